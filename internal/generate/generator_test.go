package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/llm"
	"github.com/invoicelab/insights-agent/internal/models"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

type MockLLMClient struct {
	ResponseToReturn *llm.LLMResponse
	ErrorToReturn    error
	LastRequest      llm.LLMRequest
}

func (m *MockLLMClient) InvokeModel(ctx context.Context, req llm.LLMRequest) (*llm.LLMResponse, error) {
	m.LastRequest = req
	if m.ErrorToReturn != nil {
		return nil, m.ErrorToReturn
	}
	return m.ResponseToReturn, nil
}

func (m *MockLLMClient) InvokeModelWithRetry(ctx context.Context, req llm.LLMRequest) (*llm.LLMResponse, error) {
	return m.InvokeModel(ctx, req)
}

func TestGenerate_ParsesNumberedList(t *testing.T) {
	mock := &MockLLMClient{ResponseToReturn: &llm.LLMResponse{Content: `1. The invoice total is $500.
2) Payment is due within 30 days.

3. The vendor is ACME Corp.`}}
	g := NewGenerator(mock, 1024, 0.7, newTestLogger())

	insights, err := g.Generate(context.Background(), &models.ParsedInvoice{RawText: "invoice text"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	expected := []string{
		"The invoice total is $500.",
		"Payment is due within 30 days.",
		"The vendor is ACME Corp.",
	}
	if len(insights) != len(expected) {
		t.Fatalf("expected %d insights, got %d: %v", len(expected), len(insights), insights)
	}
	for i, want := range expected {
		if insights[i] != want {
			t.Errorf("insight %d: got %q, want %q", i, insights[i], want)
		}
	}
}

func TestGenerate_PromptContainsInvoiceData(t *testing.T) {
	mock := &MockLLMClient{ResponseToReturn: &llm.LLMResponse{Content: "1. insight"}}
	g := NewGenerator(mock, 1024, 0.7, newTestLogger())

	_, err := g.Generate(context.Background(), &models.ParsedInvoice{RawText: "INVOICE #42 data"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.Contains(mock.LastRequest.Prompt, "INVOICE #42 data") {
		t.Error("expected invoice data in prompt")
	}
	if mock.LastRequest.MaxTokens != 1024 {
		t.Errorf("expected max_tokens=1024, got %d", mock.LastRequest.MaxTokens)
	}
}

func TestGenerate_LLMError(t *testing.T) {
	mock := &MockLLMClient{ErrorToReturn: errors.New("rate limit")}
	g := NewGenerator(mock, 1024, 0.7, newTestLogger())

	_, err := g.Generate(context.Background(), &models.ParsedInvoice{RawText: "data"})
	if err == nil {
		t.Fatal("expected error from LLM failure")
	}
	if !strings.Contains(err.Error(), "insight generation failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGenerate_EmptyResponse(t *testing.T) {
	mock := &MockLLMClient{ResponseToReturn: &llm.LLMResponse{Content: "   \n  "}}
	g := NewGenerator(mock, 1024, 0.7, newTestLogger())

	_, err := g.Generate(context.Background(), &models.ParsedInvoice{RawText: "data"})
	if err == nil {
		t.Fatal("expected error for empty insight list")
	}
}

func TestStripNumbering(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1. First insight", "First insight"},
		{"2) Second insight", "Second insight"},
		{"10. Tenth insight", "Tenth insight"},
		{"No numbering here", "No numbering here"},
		{"2026 revenue grew by 10%", "2026 revenue grew by 10%"},
		{"$500 is the total", "$500 is the total"},
	}

	for _, tt := range tests {
		if got := stripNumbering(tt.in); got != tt.want {
			t.Errorf("stripNumbering(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
