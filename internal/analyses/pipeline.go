package analyses

import (
	"context"
)

// Extractor turns document bytes into text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mediaType string) (string, error)
}

// Pipeline runs extraction followed by analysis for one document.
type Pipeline struct {
	Extractor Extractor
	Analyzer  *Service
}

// Run validates persona and language before spending a model call on
// extraction, then analyzes the extracted text.
func (p *Pipeline) Run(ctx context.Context, data []byte, mediaType, persona, language string) (Report, error) {
	if err := ValidateInput(persona, language); err != nil {
		return Report{}, err
	}
	text, err := p.Extractor.Extract(ctx, data, mediaType)
	if err != nil {
		return Report{}, err
	}
	return p.Analyzer.Analyze(ctx, text, persona, language)
}
