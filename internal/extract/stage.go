package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"lexiguard-backend/internal/llm"
	"lexiguard-backend/internal/shared/metrics"
	"lexiguard-backend/internal/shared/telemetry"
)

// Prompt is the fixed extraction instruction sent after the document.
const Prompt = "Extract all text from this document. Maintain the original structure and line breaks."

const (
	ModeModel = "model"
	ModeAuto  = "auto"
)

// Stage turns document bytes into plain text.
type Stage struct {
	Model llm.Gateway
	// ModelName overrides the gateway default (a fast multimodal model).
	ModelName string
	// Mode "auto" reads PDF text layers locally and only calls the model
	// for scanned PDFs and images.
	Mode string
}

// Extract returns the document text or ErrExtractionFailed. DOCX and plain
// text are read locally since hosted models do not accept them inline.
func (s *Stage) Extract(ctx context.Context, data []byte, mediaType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}
	mt := NormalizeMediaType(mediaType, data)

	text, source, err := s.extract(ctx, data, mt)
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	metrics.IncExtraction(outcome)

	fields := map[string]any{
		"media_type": mt,
		"source":     source,
		"bytes":      len(data),
		"chars":      len(text),
	}
	if err != nil {
		fields["error"] = err
		telemetry.Warn("extract.complete", fields)
		return "", err
	}
	telemetry.Info("extract.complete", fields)
	return text, nil
}

func (s *Stage) extract(ctx context.Context, data []byte, mt string) (string, string, error) {
	switch {
	case mt == MimeDOCX:
		text, err := extractDOCX(data)
		return localResult(text, err)
	case mt == MimeText:
		if !utf8.Valid(data) {
			return "", "local", fmt.Errorf("%w: text is not valid UTF-8", ErrExtractionFailed)
		}
		return localResult(string(data), nil)
	case mt == MimePDF && s.Mode == ModeAuto:
		if text, err := extractPDF(data); err == nil && strings.TrimSpace(text) != "" {
			return text, "local", nil
		} else if err != nil {
			telemetry.Info("extract.local_fallback", map[string]any{"error": err})
		}
	case !ModelAccepts(mt):
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mt)
	}

	text, err := s.fromModel(ctx, data, mt)
	return text, "model", err
}

func (s *Stage) fromModel(ctx context.Context, data []byte, mt string) (string, error) {
	if s.Model == nil {
		return "", fmt.Errorf("%w: %w", ErrExtractionFailed, llm.ErrNotConfigured)
	}
	text, err := s.Model.Generate(ctx, llm.Request{
		Operation: "extract",
		Parts:     []llm.Part{llm.Blob(mt, data), llm.Text(Prompt)},
		Config:    llm.Config{Model: s.ModelName},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: model returned no text", ErrExtractionFailed)
	}
	return text, nil
}

func localResult(text string, err error) (string, string, error) {
	if err != nil {
		return "", "local", fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", "local", fmt.Errorf("%w: document has no text", ErrExtractionFailed)
	}
	return text, "local", nil
}
