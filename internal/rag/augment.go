package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lexiguard-backend/internal/search"
	"lexiguard-backend/internal/shared/metrics"
	"lexiguard-backend/internal/shared/telemetry"
)

// ErrAugmentationUnavailable marks a lookup that could not be made. It is
// logged and counted, never returned to callers of Augment.
var ErrAugmentationUnavailable = errors.New("augmentation unavailable")

// Augmenter looks up regulatory evidence for critical clauses.
type Augmenter struct {
	Search  search.Gateway
	Timeout time.Duration
}

// New returns an Augmenter. A nil gateway disables lookups.
func New(gw search.Gateway, timeout time.Duration) *Augmenter {
	return &Augmenter{Search: gw, Timeout: timeout}
}

// Query builds the search query for a clause.
func Query(clauseText string) string {
	return search.ClausePrefix + clauseText
}

// Warning formats the evidence attached to a clause.
func Warning(r search.Result) string {
	return fmt.Sprintf("Evidence found in '%s': this clause may relate to regulations on '%s'. Review carefully.", r.Title, r.Snippet)
}

// Augment returns a warning for clauseText. ok is false on a miss (including
// a result without a snippet) and when the backend is unavailable; neither
// aborts the analysis.
func (a *Augmenter) Augment(ctx context.Context, clauseText string) (string, bool) {
	res, err := a.Lookup(ctx, clauseText)
	switch {
	case err != nil:
		metrics.IncRAGLookup(metrics.OutcomeUnavailable)
		telemetry.Warn("rag.lookup", map[string]any{"outcome": metrics.OutcomeUnavailable, "error": err})
		return "", false
	case res == nil || strings.TrimSpace(res.Snippet) == "":
		metrics.IncRAGLookup(metrics.OutcomeMiss)
		telemetry.Info("rag.lookup", map[string]any{"outcome": metrics.OutcomeMiss})
		return "", false
	}
	metrics.IncRAGLookup(metrics.OutcomeHit)
	telemetry.Info("rag.lookup", map[string]any{"outcome": metrics.OutcomeHit, "title": res.Title})
	return Warning(*res), true
}

// Lookup runs the search with the configured timeout. Failures wrap
// ErrAugmentationUnavailable.
func (a *Augmenter) Lookup(ctx context.Context, clauseText string) (*search.Result, error) {
	if a == nil || a.Search == nil {
		return nil, ErrAugmentationUnavailable
	}
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	res, err := a.Search.Search(ctx, Query(clauseText))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAugmentationUnavailable, err)
	}
	return res, nil
}
