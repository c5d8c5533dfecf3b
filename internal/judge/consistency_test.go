package judge

import (
	"context"
	"strings"
	"testing"

	"github.com/invoicelab/insights-agent/internal/llm"
)

const consistencyVerdictJSON = `{
	"explanation": "Both sources agree on all fields except the total.",
	"fields_compared": ["vendor", "total", "due_date"],
	"matches": [
		{"field": "vendor", "value": "ACME Corp"},
		{"field": "due_date", "value": "2026-03-01"}
	],
	"mismatches": [
		{"field": "total", "source_a": "$500.00", "source_b": "$550.00"}
	],
	"score": 66.7
}`

func TestConsistencyJudge_Success(t *testing.T) {
	mock := &MockLLMClient{ResponseToReturn: &llm.LLMResponse{Content: consistencyVerdictJSON}}
	j := NewParsingConsistencyJudge(mock, ModelParams{MaxTokens: 2048}, newTestLogger())

	result := j.Judge(context.Background(), "vision extracted text", "ocr extracted text")

	if result.Err != "" || result.Skipped != "" {
		t.Fatalf("expected success, got err=%q skipped=%q", result.Err, result.Skipped)
	}
	if result.Score() != 66.7 {
		t.Errorf("expected score=66.7, got %f", result.Score())
	}
	if len(result.Verdict.Mismatches) != 1 {
		t.Fatalf("expected 1 mismatch, got %d", len(result.Verdict.Mismatches))
	}
	mismatch := result.Verdict.Mismatches[0]
	if mismatch.SourceA != "$500.00" || mismatch.SourceB != "$550.00" {
		t.Errorf("expected both source values quoted, got %+v", mismatch)
	}
}

func TestConsistencyJudge_SkipsWithoutParserText(t *testing.T) {
	mock := &MockLLMClient{ResponseToReturn: &llm.LLMResponse{Content: consistencyVerdictJSON}}
	j := NewParsingConsistencyJudge(mock, ModelParams{}, newTestLogger())

	result := j.Judge(context.Background(), "vision extracted text", "")

	if result.Skipped == "" {
		t.Fatal("expected skip without parser text")
	}
	if result.Verdict != nil || result.Err != "" {
		t.Error("skipped result must carry neither verdict nor error")
	}
	if result.Score() != 0 {
		t.Errorf("expected score=0 for skipped judge, got %f", result.Score())
	}
	if mock.CallCount != 0 {
		t.Errorf("expected no LLM calls for skipped judge, got %d", mock.CallCount)
	}
}

func TestConsistencyJudge_WhitespaceParserTextSkips(t *testing.T) {
	mock := &MockLLMClient{ResponseToReturn: &llm.LLMResponse{Content: consistencyVerdictJSON}}
	j := NewParsingConsistencyJudge(mock, ModelParams{}, newTestLogger())

	result := j.Judge(context.Background(), "vision extracted text", "   \n\t ")

	if result.Skipped == "" {
		t.Fatal("expected whitespace-only parser text to skip")
	}
	if mock.CallCount != 0 {
		t.Errorf("expected no LLM calls, got %d", mock.CallCount)
	}
}

func TestConsistencyJudge_PromptContainsBothSources(t *testing.T) {
	mock := &MockLLMClient{ResponseToReturn: &llm.LLMResponse{Content: consistencyVerdictJSON}}
	j := NewParsingConsistencyJudge(mock, ModelParams{}, newTestLogger())

	j.Judge(context.Background(), "VISION TEXT", "OCR TEXT")

	prompt := mock.LastRequest.Prompt
	if !strings.Contains(prompt, "VISION TEXT") || !strings.Contains(prompt, "OCR TEXT") {
		t.Error("expected both extraction sources in prompt")
	}
	if !strings.Contains(prompt, "Source A: Multimodal Vision Extraction") {
		t.Error("expected source A label in prompt")
	}
	if !strings.Contains(prompt, "Source B: OCR Extraction") {
		t.Error("expected source B label in prompt")
	}
}

func TestConsistencyJudge_ScoreOutOfRange(t *testing.T) {
	mock := &MockLLMClient{ResponseToReturn: &llm.LLMResponse{Content: `{"score": -5}`}}
	j := NewParsingConsistencyJudge(mock, ModelParams{}, newTestLogger())

	result := j.Judge(context.Background(), "vision", "ocr")

	if !strings.Contains(result.Err, "out of range") {
		t.Errorf("expected out-of-range error, got %q", result.Err)
	}
}
