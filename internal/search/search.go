package search

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by None.
var ErrNotConfigured = errors.New("search backend not configured")

// ClausePrefix starts every clause lookup. Ranked natural-language backends
// receive it verbatim; keyword backends should match on the clause alone.
const ClausePrefix = "potential issues or regulations related to the following contract clause: "

// Result is the top match for a query.
type Result struct {
	Title   string
	Snippet string
}

// Gateway runs a ranked lookup and returns the top result, or nil when
// nothing matched.
type Gateway interface {
	Search(ctx context.Context, query string) (*Result, error)
}

// None is the gateway used when no search backend is configured.
type None struct{}

func (None) Search(ctx context.Context, query string) (*Result, error) {
	return nil, ErrNotConfigured
}
