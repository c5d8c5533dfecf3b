package aggregator

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/models"
)

// Weights holds the relative contribution of each judge to the overall score.
// They are expected to sum to 1.0.
type Weights struct {
	FactualCompleteness float64
	Quality             float64
	ParsingConsistency  float64
}

func DefaultWeights() Weights {
	return Weights{
		FactualCompleteness: 0.4,
		Quality:             0.3,
		ParsingConsistency:  0.3,
	}
}

// Aggregator folds the three judge results into a single 0-100 score. Failed
// and skipped judges contribute zero; their weight is not redistributed, so a
// missing judge always drags the overall score down.
type Aggregator struct {
	weights Weights
	logger  *zerolog.Logger
}

func New(weights Weights, logger *zerolog.Logger) *Aggregator {
	return &Aggregator{
		weights: weights,
		logger:  logger,
	}
}

func (a *Aggregator) Overall(fc models.FactualResult, q models.QualityResult, pc models.ConsistencyResult) float64 {
	quality := q.Score()
	// The quality judge grades on a 1-4 rubric scale; rescale it to 0-100
	// before weighting. Anything above 4 is already on the percent scale.
	if quality <= 4 {
		quality *= 25
	}

	overall := fc.Score()*a.weights.FactualCompleteness +
		quality*a.weights.Quality +
		pc.Score()*a.weights.ParsingConsistency
	overall = math.Round(overall*100) / 100

	a.logger.Debug().
		Float64("factual_completeness", fc.Score()).
		Float64("quality", quality).
		Float64("parsing_consistency", pc.Score()).
		Float64("overall", overall).
		Msg("aggregated judge scores")

	return overall
}
