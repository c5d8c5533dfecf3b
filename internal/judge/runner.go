package judge

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/models"
)

type FactualScorer interface {
	Judge(ctx context.Context, extractedText string, insights []string) models.FactualResult
}

type QualityScorer interface {
	Judge(ctx context.Context, insights []string) models.QualityResult
}

type ConsistencyScorer interface {
	Judge(ctx context.Context, extractedText string, parserRawText string) models.ConsistencyResult
}

// Runner fans the three judges out concurrently. The judges are independent
// and every failure stays inside its own result slot, so all three always
// complete; results are collected only after the last one finishes.
type Runner struct {
	factual     FactualScorer
	quality     QualityScorer
	consistency ConsistencyScorer
	logger      *zerolog.Logger
}

func NewRunner(factual FactualScorer, quality QualityScorer, consistency ConsistencyScorer, logger *zerolog.Logger) *Runner {
	return &Runner{
		factual:     factual,
		quality:     quality,
		consistency: consistency,
		logger:      logger,
	}
}

func (r *Runner) Run(ctx context.Context, extractedText string, insights []string, parserRawText string) (models.FactualResult, models.QualityResult, models.ConsistencyResult) {
	var (
		fc models.FactualResult
		q  models.QualityResult
		pc models.ConsistencyResult
	)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		fc = r.factual.Judge(ctx, extractedText, insights)
	}()

	go func() {
		defer wg.Done()
		q = r.quality.Judge(ctx, insights)
	}()

	go func() {
		defer wg.Done()
		pc = r.consistency.Judge(ctx, extractedText, parserRawText)
	}()

	wg.Wait()

	r.logger.Debug().
		Float64("factual_completeness", fc.Score()).
		Float64("quality", q.Score()).
		Float64("parsing_consistency", pc.Score()).
		Msg("all judges finished")

	return fc, q, pc
}
