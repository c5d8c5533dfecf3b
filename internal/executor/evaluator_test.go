package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/extract"
	"github.com/invoicelab/insights-agent/internal/models"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

type mockExtractor struct {
	text      string
	err       error
	callCount int
}

func (m *mockExtractor) Extract(ctx context.Context, img extract.Image) (string, error) {
	m.callCount++
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

type mockRunner struct {
	fc        models.FactualResult
	q         models.QualityResult
	pc        models.ConsistencyResult
	callCount int
	lastText  string
}

func (m *mockRunner) Run(ctx context.Context, extractedText string, insights []string, parserRawText string) (models.FactualResult, models.QualityResult, models.ConsistencyResult) {
	m.callCount++
	m.lastText = extractedText
	return m.fc, m.q, m.pc
}

type mockAggregator struct {
	overall float64
}

func (m *mockAggregator) Overall(fc models.FactualResult, q models.QualityResult, pc models.ConsistencyResult) float64 {
	return m.overall
}

func TestEvaluate_Success(t *testing.T) {
	extractor := &mockExtractor{text: "INVOICE #42"}
	runner := &mockRunner{
		fc: models.FactualResult{Verdict: &models.FactualVerdict{Score: 90}},
		q:  models.QualityResult{Verdict: &models.QualityVerdict{Score: 3.5}},
		pc: models.ConsistencyResult{Verdict: &models.ConsistencyVerdict{Score: 100}},
	}
	evaluator := NewEvaluator(extractor, runner, &mockAggregator{overall: 92.25}, newTestLogger())

	img := extract.Image{Path: "invoice.png", Data: []byte{1}, MIME: "image/png"}
	result, err := evaluator.Evaluate(context.Background(), img, []string{"insight"}, "ocr text")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if result.ExtractedText != "INVOICE #42" {
		t.Errorf("expected extracted text in result, got %q", result.ExtractedText)
	}
	if result.OverallScore != 92.25 {
		t.Errorf("expected overall=92.25, got %f", result.OverallScore)
	}
	if runner.lastText != "INVOICE #42" {
		t.Errorf("expected judges to receive the extracted text, got %q", runner.lastText)
	}
}

func TestEvaluate_NotFoundAbortsBeforeJudges(t *testing.T) {
	extractor := &mockExtractor{err: &extract.NotFoundError{Path: "missing.png"}}
	runner := &mockRunner{}
	evaluator := NewEvaluator(extractor, runner, &mockAggregator{}, newTestLogger())

	_, err := evaluator.Evaluate(context.Background(), extract.Image{Path: "missing.png"}, []string{"insight"}, "")

	var notFound *extract.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *extract.NotFoundError to pass through, got %v", err)
	}
	if runner.callCount != 0 {
		t.Errorf("expected no judge runs after extraction failure, got %d", runner.callCount)
	}
}

func TestEvaluate_ExtractionErrorAborts(t *testing.T) {
	extractor := &mockExtractor{err: &extract.ExtractionError{Err: errors.New("vision down")}}
	runner := &mockRunner{}
	evaluator := NewEvaluator(extractor, runner, &mockAggregator{}, newTestLogger())

	result, err := evaluator.Evaluate(context.Background(), extract.Image{Path: "a.png", Data: []byte{1}}, []string{"insight"}, "")

	if result != nil {
		t.Error("expected nil result on extraction failure")
	}
	var extractionErr *extract.ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected *extract.ExtractionError to pass through, got %v", err)
	}
	if runner.callCount != 0 {
		t.Error("expected no judge runs after extraction failure")
	}
}

func TestEvaluate_JudgeFailuresDoNotAbort(t *testing.T) {
	extractor := &mockExtractor{text: "text"}
	runner := &mockRunner{
		fc: models.FactualResult{Err: "Judge failed: throttled"},
		q:  models.QualityResult{Err: "Judge failed: parse"},
		pc: models.ConsistencyResult{Skipped: "No parser raw text provided"},
	}
	evaluator := NewEvaluator(extractor, runner, &mockAggregator{overall: 0}, newTestLogger())

	result, err := evaluator.Evaluate(context.Background(), extract.Image{Path: "a.png", Data: []byte{1}}, []string{"insight"}, "")
	if err != nil {
		t.Fatalf("judge failures must not fail the evaluation: %v", err)
	}

	if result.FactualCompleteness.Err == "" || result.Quality.Err == "" {
		t.Error("expected judge errors to be preserved in the result")
	}
	if result.ParsingConsistency.Skipped == "" {
		t.Error("expected skip reason to be preserved in the result")
	}
	if result.OverallScore != 0 {
		t.Errorf("expected overall=0, got %f", result.OverallScore)
	}
}
