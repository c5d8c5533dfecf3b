package judge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/invoicelab/insights-agent/internal/llm"
)

// ModelParams controls one judge's model invocation. A zero Timeout disables
// the per-call deadline.
type ModelParams struct {
	MaxTokens   int
	Temperature float64
	Retry       bool
	Timeout     time.Duration
}

// invokeModel runs one judge call with the configured timeout and retry
// policy.
func invokeModel(ctx context.Context, client llm.LLMClient, params ModelParams, prompt string) (*llm.LLMResponse, error) {
	if params.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.Timeout)
		defer cancel()
	}

	request := llm.LLMRequest{
		Prompt:      prompt,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	}

	if params.Retry {
		return client.InvokeModelWithRetry(ctx, request)
	}
	return client.InvokeModel(ctx, request)
}

// formatInsights renders the numbered insight list embedded in judge prompts.
func formatInsights(insights []string) string {
	var b strings.Builder
	for i, insight := range insights {
		fmt.Fprintf(&b, "  Insight %d: %s\n", i+1, insight)
	}
	return strings.TrimRight(b.String(), "\n")
}
