package generate

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

const generatorPromptText = `You are an expert financial analyst. Given invoice data,
generate interesting and actionable insights.

IMPORTANT: You must decide how many insights to generate. Choose a random number
that feels appropriate for the invoice complexity - it could be anywhere from 2 to 10.
Don't always pick the same number. Let the data guide you.

Each insight should be:
- Specific and reference actual data from the invoice
- Useful for business decision-making
- Clear and concise (1-2 sentences each)

Return ONLY a numbered list of insights, nothing else.

Analyze this invoice data and generate insights.
You decide how many insights are appropriate for this invoice.

Invoice Data:
{{.InvoiceData}}

Generate your insights:`

var generatorPrompt = template.Must(template.New("insights").Parse(generatorPromptText))

// Generator produces business insights from parsed invoice text. The model
// picks the insight count itself.
type Generator struct {
	llmClient   llm.LLMClient
	maxTokens   int
	temperature float64
	logger      *zerolog.Logger
}

func NewGenerator(client llm.LLMClient, maxTokens int, temperature float64, logger *zerolog.Logger) *Generator {
	return &Generator{
		llmClient:   client,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func (g *Generator) Generate(ctx context.Context, invoice *models.ParsedInvoice) ([]string, error) {
	now := time.Now()

	var prompt bytes.Buffer
	if err := generatorPrompt.Execute(&prompt, struct{ InvoiceData string }{InvoiceData: invoice.RawText}); err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	resp, err := g.llmClient.InvokeModelWithRetry(ctx, llm.LLMRequest{
		Prompt:      prompt.String(),
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("insight generation failed: %w", err)
	}

	insights := parseInsights(resp.Content)
	if len(insights) == 0 {
		return nil, fmt.Errorf("model returned no insights")
	}

	g.logger.Info().
		Int("insights", len(insights)).
		Dur("duration", time.Since(now)).
		Msg("insights generated")

	return insights, nil
}

// parseInsights splits the model's numbered list into individual insights,
// dropping blank lines and list numbering.
func parseInsights(content string) []string {
	var insights []string
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = stripNumbering(line)
		if line != "" {
			insights = append(insights, line)
		}
	}
	return insights
}

// stripNumbering removes leading list markers like "1.", "2)" or "10.". The
// separator must appear within the first three characters so amounts at the
// start of an unnumbered line survive.
func stripNumbering(line string) string {
	if line == "" || line[0] < '0' || line[0] > '9' {
		return line
	}
	for i := 0; i < len(line) && i < 3; i++ {
		if line[i] == '.' || line[i] == ')' {
			return strings.TrimSpace(line[i+1:])
		}
	}
	return line
}
