package judge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/invoicelab/insights-agent/internal/llm"
)

const factualVerdictJSON = `{
	"explanation": "The insights cover most data points.",
	"data_points_found": ["vendor", "total", "due_date", "tax"],
	"covered": ["vendor", "total", "due_date"],
	"missing": ["tax"],
	"per_insight": [
		{"insight": 1, "label": "factual"},
		{"insight": 2, "label": "partial", "issue": "rounded the total"}
	],
	"completeness_score": 75,
	"accuracy_score": 50,
	"score": 62.5
}`

func TestFactualJudge_Success(t *testing.T) {
	mock := &MockLLMClient{ResponseToReturn: &llm.LLMResponse{Content: factualVerdictJSON}}
	j := NewFactualCompletenessJudge(mock, ModelParams{MaxTokens: 2048}, newTestLogger())

	result := j.Judge(context.Background(), "ACME Corp invoice, total $500, due 2026-03-01", []string{
		"The invoice is from ACME Corp.",
		"The total is around $500.",
	})

	if result.Err != "" {
		t.Fatalf("expected success, got error: %s", result.Err)
	}
	if result.Verdict == nil {
		t.Fatal("expected verdict to be set")
	}
	if result.Score() != 62.5 {
		t.Errorf("expected score=62.5, got %f", result.Score())
	}
	if len(result.Verdict.Missing) != 1 || result.Verdict.Missing[0] != "tax" {
		t.Errorf("expected missing=[tax], got %v", result.Verdict.Missing)
	}
	if len(result.Verdict.PerInsight) != 2 {
		t.Fatalf("expected 2 per-insight findings, got %d", len(result.Verdict.PerInsight))
	}
	if result.Verdict.PerInsight[1].Issue != "rounded the total" {
		t.Errorf("expected issue on second insight, got %q", result.Verdict.PerInsight[1].Issue)
	}
}

func TestFactualJudge_PromptContainsData(t *testing.T) {
	mock := &MockLLMClient{ResponseToReturn: &llm.LLMResponse{Content: factualVerdictJSON}}
	j := NewFactualCompletenessJudge(mock, ModelParams{}, newTestLogger())

	j.Judge(context.Background(), "INVOICE #42 from ACME", []string{"Vendor is ACME."})

	prompt := mock.LastRequest.Prompt
	if !strings.Contains(prompt, "INVOICE #42 from ACME") {
		t.Error("expected invoice data in prompt")
	}
	if !strings.Contains(prompt, "Insight 1: Vendor is ACME.") {
		t.Error("expected numbered insight in prompt")
	}
	if !strings.Contains(prompt, "[BEGIN DATA]") || !strings.Contains(prompt, "[END DATA]") {
		t.Error("expected data delimiters in prompt")
	}
}

func TestFactualJudge_LLMError(t *testing.T) {
	mock := &MockLLMClient{ErrorToReturn: errors.New("throttled")}
	j := NewFactualCompletenessJudge(mock, ModelParams{}, newTestLogger())

	result := j.Judge(context.Background(), "invoice data", []string{"insight"})

	if result.Verdict != nil {
		t.Error("expected no verdict on LLM failure")
	}
	if !strings.HasPrefix(result.Err, "Judge failed:") {
		t.Errorf("expected 'Judge failed:' prefix, got %q", result.Err)
	}
	if result.Score() != 0 {
		t.Errorf("expected score=0 for failed judge, got %f", result.Score())
	}
}

func TestFactualJudge_UnparseableResponse(t *testing.T) {
	mock := &MockLLMClient{ResponseToReturn: &llm.LLMResponse{Content: "not json at all"}}
	j := NewFactualCompletenessJudge(mock, ModelParams{}, newTestLogger())

	result := j.Judge(context.Background(), "invoice data", []string{"insight"})

	if result.Err == "" {
		t.Fatal("expected error for unparseable response")
	}
	if !strings.Contains(result.Err, "Parse failed") {
		t.Errorf("expected parse failure in error, got %q", result.Err)
	}
}

func TestFactualJudge_ScoreOutOfRange(t *testing.T) {
	mock := &MockLLMClient{ResponseToReturn: &llm.LLMResponse{Content: `{"score": 150}`}}
	j := NewFactualCompletenessJudge(mock, ModelParams{}, newTestLogger())

	result := j.Judge(context.Background(), "invoice data", []string{"insight"})

	if result.Verdict != nil {
		t.Error("expected out-of-range score to be rejected")
	}
	if !strings.Contains(result.Err, "out of range") {
		t.Errorf("expected out-of-range error, got %q", result.Err)
	}
}
