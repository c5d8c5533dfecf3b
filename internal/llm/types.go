package llm

type LLMRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type LLMResponse struct {
	Content    string
	StopReason string
}

// VisionRequest is a single multimodal call: raw image bytes plus a fixed
// instruction string.
type VisionRequest struct {
	Instruction string
	ImageData   []byte
	MIMEType    string
	MaxTokens   int
}
