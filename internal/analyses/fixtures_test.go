package analyses

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"lexiguard-backend/internal/llm"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return string(raw)
}

// scriptedModel returns replies in order and records every request.
type scriptedModel struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []llm.Request
}

func (m *scriptedModel) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", llm.ErrEmptyResponse
	}
	out := m.replies[0]
	m.replies = m.replies[1:]
	return out, nil
}

type fakeAugmenter struct {
	mu      sync.Mutex
	queries []string
	warning func(clause string) (string, bool)
}

func (a *fakeAugmenter) Augment(ctx context.Context, clauseText string) (string, bool) {
	a.mu.Lock()
	a.queries = append(a.queries, clauseText)
	a.mu.Unlock()
	if a.warning == nil {
		return "", false
	}
	return a.warning(clauseText)
}
