package analyses

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"lexiguard-backend/internal/llm"
	"lexiguard-backend/internal/shared/metrics"
	"lexiguard-backend/internal/shared/telemetry"
)

// Augmenter looks up supporting evidence for a clause. It never fails; a
// lookup that cannot be made reports ok=false.
type Augmenter interface {
	Augment(ctx context.Context, clauseText string) (warning string, ok bool)
}

// Service runs the clause risk analysis.
type Service struct {
	Model llm.Gateway
	// ModelName overrides the gateway default.
	ModelName string
	Personas  *PersonaTable
	RAG       Augmenter
	// RAGConcurrency > 1 looks up Critical clauses in parallel.
	RAGConcurrency int
	// RepairAttempts is how many times a malformed reply is sent back for repair.
	RepairAttempts int
}

// GenerationConfig is the sampling setup for analysis calls.
func (s *Service) GenerationConfig() llm.Config {
	return llm.Config{
		Model:            s.ModelName,
		Temperature:      llm.Float32(0.2),
		TopP:             llm.Float32(0.95),
		MaxOutputTokens:  8192,
		ResponseMIMEType: "application/json",
	}
}

// Analyze classifies every clause of text for persona and translates the
// summary and explanations into language. Critical clauses are augmented
// with retrieval evidence when available.
func (s *Service) Analyze(ctx context.Context, text, persona, language string) (Report, error) {
	report, err := s.analyze(ctx, text, persona, language)
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	metrics.IncAnalysis(outcome)
	if err != nil {
		telemetry.Warn("analysis.complete", map[string]any{
			"persona":  persona,
			"language": language,
			"error":    err,
		})
		return Report{}, err
	}

	warnings := 0
	for _, c := range report.Clauses {
		if c.RAGWarning != "" {
			warnings++
		}
	}
	telemetry.Info("analysis.complete", map[string]any{
		"persona":      persona,
		"language":     language,
		"clauses":      len(report.Clauses),
		"critical":     report.CriticalCount(),
		"rag_warnings": warnings,
	})
	return report, nil
}

func (s *Service) analyze(ctx context.Context, text, persona, language string) (Report, error) {
	if err := ValidateInput(persona, language); err != nil {
		return Report{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Report{}, fmt.Errorf("%w: document text is empty", ErrInvalidInput)
	}
	if s.Model == nil {
		return Report{}, llm.ErrNotConfigured
	}

	cfg := s.GenerationConfig()
	raw, err := s.Model.Generate(ctx, llm.Request{
		Operation: "analyze",
		Parts:     []llm.Part{llm.Text(text), llm.Text(BuildPrompt(s.Personas, persona, language))},
		Config:    cfg,
	})
	if err != nil {
		return Report{}, fmt.Errorf("analysis model call: %w", err)
	}

	report, err := ParseReport(raw)
	for attempt := 0; err != nil && attempt < s.RepairAttempts; attempt++ {
		telemetry.Warn("analysis.repair", map[string]any{"attempt": attempt + 1, "error": err})
		repaired, callErr := s.Model.Generate(ctx, llm.Request{
			Operation: "repair",
			Parts:     []llm.Part{llm.Text(buildRepairPrompt(raw, err))},
			Config:    cfg,
		})
		if callErr != nil {
			return Report{}, fmt.Errorf("analysis repair call: %w", callErr)
		}
		raw = repaired
		report, err = ParseReport(raw)
	}
	if err != nil {
		return Report{}, err
	}

	report.FullText = text
	s.augment(ctx, report.Clauses)
	return report, nil
}

// ValidateInput rejects an empty persona or language.
func ValidateInput(persona, language string) error {
	var problems []string
	if strings.TrimSpace(persona) == "" {
		problems = append(problems, "persona is required")
	}
	if strings.TrimSpace(language) == "" {
		problems = append(problems, "language is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, ", "))
	}
	return nil
}

// augment attaches warnings to Critical clauses in place. Each goroutine
// writes only its own index.
func (s *Service) augment(ctx context.Context, clauses []Clause) {
	if s.RAG == nil {
		return
	}
	var critical []int
	for i := range clauses {
		if clauses[i].RiskLevel == RiskCritical {
			critical = append(critical, i)
		}
	}
	if len(critical) == 0 {
		return
	}

	if s.RAGConcurrency <= 1 {
		for _, i := range critical {
			if w, ok := s.RAG.Augment(ctx, clauses[i].ClauseText); ok {
				clauses[i].RAGWarning = w
			}
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(s.RAGConcurrency)
	for _, i := range critical {
		g.Go(func() error {
			if w, ok := s.RAG.Augment(ctx, clauses[i].ClauseText); ok {
				clauses[i].RAGWarning = w
			}
			return nil
		})
	}
	_ = g.Wait()
}
