package executor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/extract"
	"github.com/invoicelab/insights-agent/internal/models"
)

type TextExtractor interface {
	Extract(ctx context.Context, img extract.Image) (string, error)
}

type JudgeRunner interface {
	Run(ctx context.Context, extractedText string, insights []string, parserRawText string) (models.FactualResult, models.QualityResult, models.ConsistencyResult)
}

type Aggregator interface {
	Overall(fc models.FactualResult, q models.QualityResult, pc models.ConsistencyResult) float64
}

// Evaluator drives one full evaluation: extract the invoice text from the
// image, fan out the judges, and aggregate their scores. Extraction failures
// abort the run; judge failures do not.
type Evaluator struct {
	extractor  TextExtractor
	judges     JudgeRunner
	aggregator Aggregator
	logger     *zerolog.Logger
}

func NewEvaluator(extractor TextExtractor, judges JudgeRunner, aggregator Aggregator, logger *zerolog.Logger) *Evaluator {
	return &Evaluator{
		extractor:  extractor,
		judges:     judges,
		aggregator: aggregator,
		logger:     logger,
	}
}

func (e *Evaluator) Evaluate(ctx context.Context, img extract.Image, insights []string, parserRawText string) (*models.EvaluationResult, error) {
	now := time.Now()

	extractedText, err := e.extractor.Extract(ctx, img)
	if err != nil {
		e.logger.Error().Err(err).Str("image", img.Path).Msg("extraction failed, aborting evaluation")
		return nil, err
	}

	fc, q, pc := e.judges.Run(ctx, extractedText, insights, parserRawText)
	overall := e.aggregator.Overall(fc, q, pc)

	e.logger.Info().
		Str("image", img.Path).
		Int("insights", len(insights)).
		Float64("overall_score", overall).
		Dur("duration", time.Since(now)).
		Msg("evaluation completed")

	return &models.EvaluationResult{
		ExtractedText:       extractedText,
		FactualCompleteness: fc,
		Quality:             q,
		ParsingConsistency:  pc,
		OverallScore:        overall,
	}, nil
}
