package extract

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/llm"
)

const extractionInstruction = "Extract ALL text and data from this invoice. " +
	"Include vendor name, dates, amounts, line items, totals - everything visible."

// Extractor turns an invoice image into reference text via a single
// multimodal model call. One attempt, no retry.
type Extractor struct {
	vision    llm.VisionClient
	maxTokens int
	logger    *zerolog.Logger
}

func NewExtractor(vision llm.VisionClient, maxTokens int, logger *zerolog.Logger) *Extractor {
	return &Extractor{
		vision:    vision,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Extract returns the full text content the vision model reads from the
// image. A missing resource yields *NotFoundError; any downstream failure
// yields *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, img Image) (string, error) {
	if len(img.Data) == 0 {
		return "", &NotFoundError{Path: img.Path}
	}

	now := time.Now()

	resp, err := e.vision.ExtractText(ctx, llm.VisionRequest{
		Instruction: extractionInstruction,
		ImageData:   img.Data,
		MIMEType:    img.MIME,
		MaxTokens:   e.maxTokens,
	})
	if err != nil {
		e.logger.Error().Err(err).Str("image", img.Path).Msg("vision extraction failed")
		return "", &ExtractionError{Err: err}
	}

	e.logger.Info().
		Str("image", img.Path).
		Int("chars", len(resp.Content)).
		Dur("duration", time.Since(now)).
		Msg("invoice text extracted")

	return resp.Content, nil
}
