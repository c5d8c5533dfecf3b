package batch

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/extract"
	"github.com/invoicelab/insights-agent/internal/models"
)

type Evaluator interface {
	Evaluate(ctx context.Context, img extract.Image, insights []string, parserRawText string) (*models.EvaluationResult, error)
}

// OutputRecord pairs one request with its evaluation outcome. Error is set
// when the record could not be evaluated at all (bad input line, missing
// image, extraction failure).
type OutputRecord struct {
	ID     string                   `json:"request_id"`
	Result *models.EvaluationResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// Processor evaluates batch records with a fixed worker pool. Results come
// back in completion order, not input order.
type Processor struct {
	evaluator Evaluator
	workers   int
	logger    *zerolog.Logger
}

func NewProcessor(evaluator Evaluator, workers int, logger *zerolog.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		evaluator: evaluator,
		workers:   workers,
		logger:    logger,
	}
}

func (p *Processor) Process(ctx context.Context, records []InputRecord) <-chan OutputRecord {
	jobs := make(chan InputRecord)
	results := make(chan OutputRecord)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for record := range jobs {
				out := p.evaluateRecord(ctx, record)
				select {
				case results <- out:
				case <-ctx.Done():
					return
				}
			}
		}(i)
	}

	go func() {
		defer close(jobs)
		for _, record := range records {
			select {
			case jobs <- record:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (p *Processor) evaluateRecord(ctx context.Context, record InputRecord) OutputRecord {
	if record.Error != nil {
		return OutputRecord{
			ID:    record.Request.RequestID,
			Error: record.Error.Error(),
		}
	}

	now := time.Now()

	img, err := resolveImage(record.Request)
	if err != nil {
		p.logger.Error().
			Err(err).
			Int("line", record.LineNumber).
			Str("request_id", record.Request.RequestID).
			Msg("failed to load image")
		return OutputRecord{ID: record.Request.RequestID, Error: err.Error()}
	}

	result, err := p.evaluator.Evaluate(ctx, img, record.Request.Insights, record.Request.ParserRawText)
	if err != nil {
		p.logger.Error().
			Err(err).
			Int("line", record.LineNumber).
			Str("request_id", record.Request.RequestID).
			Msg("evaluation failed")
		return OutputRecord{ID: record.Request.RequestID, Error: err.Error()}
	}

	p.logger.Info().
		Str("request_id", record.Request.RequestID).
		Float64("overall_score", result.OverallScore).
		Dur("duration", time.Since(now)).
		Msg("record evaluated")

	return OutputRecord{ID: record.Request.RequestID, Result: result}
}

func resolveImage(req models.EvaluationRequest) (extract.Image, error) {
	if len(req.ImageData) > 0 {
		mimeType := req.MIMEType
		if mimeType == "" {
			mimeType = http.DetectContentType(req.ImageData)
		}
		return extract.Image{Path: req.ImagePath, Data: req.ImageData, MIME: mimeType}, nil
	}
	return extract.LoadImage(req.ImagePath)
}
