package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/models"
)

type Parser interface {
	Parse(ctx context.Context, filename string, data []byte) (*models.ParsedInvoice, error)
}

type InsightGenerator interface {
	Generate(ctx context.Context, invoice *models.ParsedInvoice) ([]string, error)
}

// Result carries everything the parse-then-generate pipeline produced for one
// invoice image.
type Result struct {
	ParsedInvoice *models.ParsedInvoice
	Insights      []string
	ParserUsed    string
}

// Pipeline runs the two-step insight workflow: OCR-parse the invoice image,
// then generate insights from the parsed text. A parse failure short-circuits
// generation.
type Pipeline struct {
	parser    Parser
	generator InsightGenerator
	logger    *zerolog.Logger
}

func NewPipeline(parser Parser, generator InsightGenerator, logger *zerolog.Logger) *Pipeline {
	return &Pipeline{
		parser:    parser,
		generator: generator,
		logger:    logger,
	}
}

func (p *Pipeline) Run(ctx context.Context, filename string, data []byte) (*Result, error) {
	now := time.Now()

	parsed, err := p.parser.Parse(ctx, filename, data)
	if err != nil {
		return nil, fmt.Errorf("parsing failed: %w", err)
	}

	insights, err := p.generator.Generate(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	p.logger.Info().
		Str("file", filename).
		Str("parser", "ocr").
		Int("insights", len(insights)).
		Dur("duration", time.Since(now)).
		Msg("workflow completed")

	return &Result{
		ParsedInvoice: parsed,
		Insights:      insights,
		ParserUsed:    "ocr",
	}, nil
}
