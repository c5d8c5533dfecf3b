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

// Rubric-anchored grading: each axis is classified into a written four-level
// scale rather than an unanchored numeric range, which keeps repeated runs
// consistent.
const qualityPromptText = `You are an expert content evaluator. Your task is to assess the quality of generated invoice insights using the rubric below.

[BEGIN DATA]
[Generated Insights]
{{.Insights}}
[END DATA]

Evaluate each criterion using the following rubric:

CLARITY (Is each insight easy to understand?)
- excellent: Every insight is immediately clear with no ambiguity
- good: Most insights are clear, minor ambiguity in one or two
- fair: Several insights require re-reading to understand
- poor: Most insights are confusing or poorly worded

SPECIFICITY (Does each insight reference concrete data from the invoice?)
- excellent: Every insight cites specific numbers, dates, or names from the invoice
- good: Most insights reference specific data, a few are generic
- fair: Insights are mostly generic with occasional specific references
- poor: Insights are vague and could apply to any invoice

DIVERSITY (Are the insights non-repetitive and cover different aspects?)
- excellent: Each insight covers a distinct aspect with no overlap
- good: Minor thematic overlap between one or two insights
- fair: Several insights cover the same aspect or repeat information
- poor: Most insights are redundant or repetitive

ACTIONABILITY (Does each insight provide useful, non-obvious information?)
- excellent: Insights surface patterns, anomalies, or actionable observations
- good: Most insights go beyond restating data to add value
- fair: Insights mostly restate invoice data without adding interpretation
- poor: Insights are trivial restatements that add no value

First, explain your reasoning for each criterion. Then classify each criterion into one of the four levels.

Produce your final verdict as JSON. Emit scores as bare numbers (4=excellent, 3=good, 2=fair, 1=poor), not strings:
` + "```json" + `
{
  "explanation": "<your reasoning for each criterion>",
  "clarity": {"label": "excellent|good|fair|poor", "score": <4|3|2|1>},
  "specificity": {"label": "excellent|good|fair|poor", "score": <4|3|2|1>},
  "diversity": {"label": "excellent|good|fair|poor", "score": <4|3|2|1>},
  "actionability": {"label": "excellent|good|fair|poor", "score": <4|3|2|1>},
  "score": <average of the four scores, rounded to 1 decimal>
}
` + "```"

var qualityPrompt = template.Must(template.New("quality").Parse(qualityPromptText))

// QualityJudge rates the generated insights on clarity, specificity,
// diversity and actionability. Verdict scores stay on the 1-4 rubric scale.
type QualityJudge struct {
	llmClient llm.LLMClient
	params    ModelParams
	logger    *zerolog.Logger
}

func NewQualityJudge(client llm.LLMClient, params ModelParams, logger *zerolog.Logger) *QualityJudge {
	return &QualityJudge{
		llmClient: client,
		params:    params,
		logger:    logger,
	}
}

func (j *QualityJudge) Judge(ctx context.Context, insights []string) models.QualityResult {
	now := time.Now()

	var prompt bytes.Buffer
	err := qualityPrompt.Execute(&prompt, struct{ Insights string }{Insights: formatInsights(insights)})
	if err != nil {
		j.logger.Error().Err(err).Str("judge", "quality").Msg("failed to build prompt")
		return models.QualityResult{Err: fmt.Sprintf("Judge failed: %v", err)}
	}

	resp, err := invokeModel(ctx, j.llmClient, j.params, prompt.String())
	if err != nil {
		j.logger.Error().Err(err).Str("judge", "quality").Msg("LLM call failed")
		return models.QualityResult{Err: fmt.Sprintf("Judge failed: %v", err)}
	}

	var verdict models.QualityVerdict
	if err := DecodeVerdict(resp.Content, &verdict); err != nil {
		j.logger.Error().
			Err(err).
			Str("judge", "quality").
			Str("content", resp.Content).
			Msg("failed to parse LLM response")
		return models.QualityResult{Err: fmt.Sprintf("Judge failed: %v", err)}
	}

	if verdict.Score < 1 || verdict.Score > 4 {
		j.logger.Error().
			Str("judge", "quality").
			Float64("score", verdict.Score).
			Msg("LLM returned invalid score")
		return models.QualityResult{Err: fmt.Sprintf("Judge failed: score %.2f out of range [1, 4]", verdict.Score)}
	}

	j.logger.Info().
		Str("judge", "quality").
		Float64("score", verdict.Score).
		Str("clarity", string(verdict.Clarity.Label)).
		Str("specificity", string(verdict.Specificity.Label)).
		Str("diversity", string(verdict.Diversity.Label)).
		Str("actionability", string(verdict.Actionability.Label)).
		Dur("duration", time.Since(now)).
		Msg("judge completed")

	return models.QualityResult{Verdict: &verdict}
}
