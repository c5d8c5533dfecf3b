package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/models"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

type mockParser struct {
	invoice   *models.ParsedInvoice
	err       error
	callCount int
}

func (m *mockParser) Parse(ctx context.Context, filename string, data []byte) (*models.ParsedInvoice, error) {
	m.callCount++
	if m.err != nil {
		return nil, m.err
	}
	return m.invoice, nil
}

type mockGenerator struct {
	insights  []string
	err       error
	callCount int
	lastText  string
}

func (m *mockGenerator) Generate(ctx context.Context, invoice *models.ParsedInvoice) ([]string, error) {
	m.callCount++
	m.lastText = invoice.RawText
	if m.err != nil {
		return nil, m.err
	}
	return m.insights, nil
}

func TestPipeline_Success(t *testing.T) {
	parser := &mockParser{invoice: &models.ParsedInvoice{RawText: "## Invoice\nTotal: $500"}}
	generator := &mockGenerator{insights: []string{"Total is $500."}}
	pipeline := NewPipeline(parser, generator, newTestLogger())

	result, err := pipeline.Run(context.Background(), "invoice.png", []byte{1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.ParserUsed != "ocr" {
		t.Errorf("expected parser_used=ocr, got %q", result.ParserUsed)
	}
	if len(result.Insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(result.Insights))
	}
	if generator.lastText != "## Invoice\nTotal: $500" {
		t.Errorf("expected generator to receive parsed text, got %q", generator.lastText)
	}
}

func TestPipeline_ParseFailureShortCircuits(t *testing.T) {
	parser := &mockParser{err: errors.New("docling unreachable")}
	generator := &mockGenerator{insights: []string{"insight"}}
	pipeline := NewPipeline(parser, generator, newTestLogger())

	_, err := pipeline.Run(context.Background(), "invoice.png", []byte{1})
	if err == nil {
		t.Fatal("expected parse failure to propagate")
	}
	if !strings.HasPrefix(err.Error(), "parsing failed:") {
		t.Errorf("unexpected error: %v", err)
	}
	if generator.callCount != 0 {
		t.Error("expected generation to be skipped after a parse failure")
	}
}

func TestPipeline_GenerationFailure(t *testing.T) {
	parser := &mockParser{invoice: &models.ParsedInvoice{RawText: "text"}}
	generator := &mockGenerator{err: errors.New("rate limit")}
	pipeline := NewPipeline(parser, generator, newTestLogger())

	_, err := pipeline.Run(context.Background(), "invoice.png", []byte{1})
	if err == nil {
		t.Fatal("expected generation failure to propagate")
	}
	if !strings.HasPrefix(err.Error(), "generation failed:") {
		t.Errorf("unexpected error: %v", err)
	}
}
