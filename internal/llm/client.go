package llm

import (
	"context"
)

// LLMClient is an interface for invoking LLM models
// This allows mocking in tests without making real API calls
type LLMClient interface {
	InvokeModel(ctx context.Context, request LLMRequest) (*LLMResponse, error)
	InvokeModelWithRetry(ctx context.Context, request LLMRequest) (*LLMResponse, error)
}

// VisionClient is an interface for multimodal text extraction from images.
// Only the Gemini provider implements it.
type VisionClient interface {
	ExtractText(ctx context.Context, request VisionRequest) (*LLMResponse, error)
}
