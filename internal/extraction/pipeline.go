package extraction

import (
	"context"
	"fmt"

	"github.com/LightBlast-creator/cuex/pkg/logger"
)

// Pipeline turns a script PDF into a reviewable cue list. It is safe for
// concurrent use; all state lives on the stack of a single call.
type Pipeline struct {
	cfg    Config
	ner    EntityRecognizer
	logger *logger.Logger
}

// NewPipeline creates a pipeline. ner may be nil, in which case the
// entity-recognition fallback for role discovery is skipped.
func NewPipeline(cfg Config, ner EntityRecognizer, log *logger.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		ner:    ner,
		logger: log.Named("extraction"),
	}
}

// ExtractFromPDF decodes the PDF and runs the extraction over its text.
func (p *Pipeline) ExtractFromPDF(ctx context.Context, pdfBytes []byte) (*Result, error) {
	text, err := extractText(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to extract pdf text: %w", err)
	}
	return p.Extract(ctx, text), nil
}

// Extract discovers the cast and scans the body for dialogue and
// technical cues.
func (p *Pipeline) Extract(ctx context.Context, text string) *Result {
	roles := p.discoverRoles(ctx, text)
	cues := p.scanBody(text, roles)

	p.logger.Info("Script extraction finished",
		logger.Int("roles", len(roles)),
		logger.Int("cues", len(cues)))

	return &Result{
		Text:  text,
		Cues:  cues,
		Roles: roles,
	}
}
