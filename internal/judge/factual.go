package judge

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/llm"
	"github.com/invoicelab/insights-agent/internal/models"
)

// Explanation-first prompt: the model reasons through coverage and per-insight
// factuality before emitting the JSON verdict, which reduces score variance
// compared to asking for a bare number.
const factualPromptText = `You are an expert invoice auditor. Your task is to evaluate generated insights against the source invoice data for two criteria: COMPLETENESS and FACTUAL ACCURACY.

Definitions:
- "Completeness" means whether the insights, taken together, reference all key data points present in the invoice (vendor name, invoice number, dates, line items, quantities, unit prices, subtotal, taxes, total, payment terms, etc.).
- "Factual accuracy" means whether each insight's claims (numbers, dates, names, calculations) exactly match the source invoice data. A "hallucination" is any claim not supported by or contradicting the invoice data.

[BEGIN DATA]
[Invoice Data]
{{.InvoiceData}}

[Generated Insights]
{{.Insights}}
[END DATA]

Evaluate step by step:

1. First, list every key data point present in the invoice data.
2. For each data point, classify whether it is "covered" (referenced in at least one insight) or "missing" (not mentioned in any insight).
3. For each insight, classify it as:
   - "factual" - all claims match the invoice data exactly
   - "hallucinated" - contains information not in the invoice or contradicts it
   - "partial" - some claims are correct but others are wrong or unsupported
   For any non-factual insight, quote the specific problematic claim.

After your analysis, produce your final verdict as JSON. Emit scores as bare numbers, not strings:
` + "```json" + `
{
  "explanation": "<your step-by-step reasoning>",
  "data_points_found": ["<list of all key data points in invoice>"],
  "covered": ["<data points referenced in insights>"],
  "missing": ["<data points NOT referenced in any insight>"],
  "per_insight": [
    {"insight": 1, "label": "factual|hallucinated|partial", "issue": "<omit or describe the problem>"}
  ],
  "completeness_score": <0-100, percentage of data points covered>,
  "accuracy_score": <0-100, percentage of insights that are fully factual>,
  "score": <0-100, average of completeness_score and accuracy_score>
}
` + "```"

var factualPrompt = template.Must(template.New("factual-completeness").Parse(factualPromptText))

// FactualCompletenessJudge grades insights for data-point coverage and
// factual accuracy against the extracted invoice text.
type FactualCompletenessJudge struct {
	llmClient llm.LLMClient
	params    ModelParams
	logger    *zerolog.Logger
}

func NewFactualCompletenessJudge(client llm.LLMClient, params ModelParams, logger *zerolog.Logger) *FactualCompletenessJudge {
	return &FactualCompletenessJudge{
		llmClient: client,
		params:    params,
		logger:    logger,
	}
}

func (j *FactualCompletenessJudge) Judge(ctx context.Context, extractedText string, insights []string) models.FactualResult {
	now := time.Now()

	var prompt bytes.Buffer
	err := factualPrompt.Execute(&prompt, struct {
		InvoiceData string
		Insights    string
	}{
		InvoiceData: extractedText,
		Insights:    formatInsights(insights),
	})
	if err != nil {
		j.logger.Error().Err(err).Str("judge", "factual-completeness").Msg("failed to build prompt")
		return models.FactualResult{Err: fmt.Sprintf("Judge failed: %v", err)}
	}

	resp, err := invokeModel(ctx, j.llmClient, j.params, prompt.String())
	if err != nil {
		j.logger.Error().Err(err).Str("judge", "factual-completeness").Msg("LLM call failed")
		return models.FactualResult{Err: fmt.Sprintf("Judge failed: %v", err)}
	}

	var verdict models.FactualVerdict
	if err := DecodeVerdict(resp.Content, &verdict); err != nil {
		j.logger.Error().
			Err(err).
			Str("judge", "factual-completeness").
			Str("content", resp.Content).
			Msg("failed to parse LLM response")
		return models.FactualResult{Err: fmt.Sprintf("Judge failed: %v", err)}
	}

	if verdict.Score < 0 || verdict.Score > 100 {
		j.logger.Error().
			Str("judge", "factual-completeness").
			Float64("score", verdict.Score).
			Msg("LLM returned invalid score")
		return models.FactualResult{Err: fmt.Sprintf("Judge failed: score %.2f out of range [0, 100]", verdict.Score)}
	}

	j.logger.Info().
		Str("judge", "factual-completeness").
		Float64("score", verdict.Score).
		Int("covered", len(verdict.Covered)).
		Int("missing", len(verdict.Missing)).
		Dur("duration", time.Since(now)).
		Msg("judge completed")

	return models.FactualResult{Verdict: &verdict}
}
