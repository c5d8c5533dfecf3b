package gemini

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/invoicelab/insights-agent/internal/llm"
)

func (c *Client) InvokeModel(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(request.MaxTokens),
		Temperature:     genai.Ptr(float32(request.Temperature)),
	}

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: request.Prompt}},
	}}

	output, err := c.Client.Models.GenerateContent(ctx, c.ModelID, contents, config)
	if err != nil {
		return nil, fmt.Errorf("unable to invoke gemini model: %w", err)
	}

	var stopReason string
	if len(output.Candidates) > 0 {
		stopReason = string(output.Candidates[0].FinishReason)
	}

	return &llm.LLMResponse{
		Content:    output.Text(),
		StopReason: stopReason,
	}, nil
}

// ExtractText sends the raw image bytes together with an instruction in a
// single multimodal request.
func (c *Client) ExtractText(ctx context.Context, request llm.VisionRequest) (*llm.LLMResponse, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(request.MaxTokens),
		Temperature:     genai.Ptr(float32(0)),
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: request.MIMEType, Data: request.ImageData}},
			{Text: request.Instruction},
		},
	}}

	output, err := c.Client.Models.GenerateContent(ctx, c.ModelID, contents, config)
	if err != nil {
		return nil, fmt.Errorf("unable to invoke gemini vision model: %w", err)
	}

	var stopReason string
	if len(output.Candidates) > 0 {
		stopReason = string(output.Candidates[0].FinishReason)
	}

	return &llm.LLMResponse{
		Content:    output.Text(),
		StopReason: stopReason,
	}, nil
}

func (c *Client) InvokeModelWithRetry(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	var lastErr error

	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		response, err := c.InvokeModel(ctx, request)
		if err == nil {
			return response, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			return nil, fmt.Errorf("non-retryable error: %w", err)
		}

		delay := calculateBackoff(attempt, c.InitialDelay, c.MaxDelay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			continue
		}
	}

	return nil, fmt.Errorf("max retries %d exceeded: %w", c.MaxRetries, lastErr)
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()

	// Quota and rate limiting
	if strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") {
		return true
	}

	// Service errors (5xx)
	if strings.Contains(errStr, "UNAVAILABLE") ||
		strings.Contains(errStr, "INTERNAL") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "503") {
		return true
	}

	// Network errors
	if strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "timeout") {
		return true
	}

	return false
}

func calculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	backoff := float64(initialDelay) * math.Pow(2, float64(attempt))

	if backoff > float64(maxDelay) {
		backoff = float64(maxDelay)
	}

	jitter := backoff * 0.2 * (2*rand.Float64() - 1) // between -20% and +20%
	backoff += jitter

	return time.Duration(backoff)
}
