package judge

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/llm"
	"github.com/invoicelab/insights-agent/internal/models"
)

const consistencyPromptText = `You are an expert data reconciliation analyst. Your task is to compare two independent extractions of the same invoice and determine whether they agree on all key data points.

Definitions:
- "Match" means both sources report the same value for a data point (minor formatting differences like "$1,000" vs "1000.00" are acceptable matches).
- "Mismatch" means the sources report different values, or one source includes a data point the other is missing entirely.

[BEGIN DATA]
[Source A: Multimodal Vision Extraction]
{{.SourceA}}

[Source B: OCR Extraction]
{{.SourceB}}
[END DATA]

Evaluate step by step:

1. Identify every key data point present in either source (vendor name, invoice number, dates, line items, amounts, tax, total, payment terms, addresses, etc.).
2. For each data point, compare the values from both sources.
3. Classify each data point as "match" or "mismatch". For mismatches, quote the value from each source.

After your analysis, produce your final verdict as JSON. Emit the score as a bare number, not a string:
` + "```json" + `
{
  "explanation": "<your step-by-step comparison reasoning>",
  "fields_compared": ["<list of all data points checked>"],
  "matches": [
    {"field": "<name>", "value": "<agreed value>"}
  ],
  "mismatches": [
    {"field": "<name>", "source_a": "<value from vision>", "source_b": "<value from OCR>"}
  ],
  "score": <0-100, percentage of fields that match>
}
` + "```"

var consistencyPrompt = template.Must(template.New("parsing-consistency").Parse(consistencyPromptText))

// ParsingConsistencyJudge reconciles the vision-model extraction against an
// independently produced OCR extraction. Without OCR text it returns a skip
// stub and never calls the model.
type ParsingConsistencyJudge struct {
	llmClient llm.LLMClient
	params    ModelParams
	logger    *zerolog.Logger
}

func NewParsingConsistencyJudge(client llm.LLMClient, params ModelParams, logger *zerolog.Logger) *ParsingConsistencyJudge {
	return &ParsingConsistencyJudge{
		llmClient: client,
		params:    params,
		logger:    logger,
	}
}

func (j *ParsingConsistencyJudge) Judge(ctx context.Context, extractedText string, parserRawText string) models.ConsistencyResult {
	if strings.TrimSpace(parserRawText) == "" {
		j.logger.Info().Str("judge", "parsing-consistency").Msg("no parser raw text, skipping")
		return models.ConsistencyResult{Skipped: "No parser raw text provided"}
	}

	now := time.Now()

	var prompt bytes.Buffer
	err := consistencyPrompt.Execute(&prompt, struct {
		SourceA string
		SourceB string
	}{
		SourceA: extractedText,
		SourceB: parserRawText,
	})
	if err != nil {
		j.logger.Error().Err(err).Str("judge", "parsing-consistency").Msg("failed to build prompt")
		return models.ConsistencyResult{Err: fmt.Sprintf("Judge failed: %v", err)}
	}

	resp, err := invokeModel(ctx, j.llmClient, j.params, prompt.String())
	if err != nil {
		j.logger.Error().Err(err).Str("judge", "parsing-consistency").Msg("LLM call failed")
		return models.ConsistencyResult{Err: fmt.Sprintf("Judge failed: %v", err)}
	}

	var verdict models.ConsistencyVerdict
	if err := DecodeVerdict(resp.Content, &verdict); err != nil {
		j.logger.Error().
			Err(err).
			Str("judge", "parsing-consistency").
			Str("content", resp.Content).
			Msg("failed to parse LLM response")
		return models.ConsistencyResult{Err: fmt.Sprintf("Judge failed: %v", err)}
	}

	if verdict.Score < 0 || verdict.Score > 100 {
		j.logger.Error().
			Str("judge", "parsing-consistency").
			Float64("score", verdict.Score).
			Msg("LLM returned invalid score")
		return models.ConsistencyResult{Err: fmt.Sprintf("Judge failed: score %.2f out of range [0, 100]", verdict.Score)}
	}

	j.logger.Info().
		Str("judge", "parsing-consistency").
		Float64("score", verdict.Score).
		Int("matches", len(verdict.Matches)).
		Int("mismatches", len(verdict.Mismatches)).
		Dur("duration", time.Since(now)).
		Msg("judge completed")

	return models.ConsistencyResult{Verdict: &verdict}
}
