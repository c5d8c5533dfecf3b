package judge

import (
	"encoding/json"
	"strings"
)

// ParseError reports that no JSON object could be recovered from a model
// response. Raw preserves the original response text.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return "Parse failed"
}

// DecodeVerdict extracts a JSON object from a judge response and decodes it
// into v. Models rarely emit pure JSON, so three tiers are tried in order:
// strict decoding of the fence-stripped text, then decoding the substring
// between the first '{' and the last '}', then *ParseError.
func DecodeVerdict(content string, v any) error {
	cleaned := stripMarkdownFence(content)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		if err := json.Unmarshal([]byte(content[start:end+1]), v); err == nil {
			return nil
		}
	}

	return &ParseError{Raw: content}
}

// stripMarkdownFence removes markdown code block formatting if present
// (```json ... ``` or ``` ... ```).
func stripMarkdownFence(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		firstNewline := strings.Index(content, "\n")
		if firstNewline == -1 {
			return content
		}

		closingBackticks := strings.LastIndex(content, "```")
		if closingBackticks == -1 || closingBackticks <= firstNewline {
			return content
		}

		content = content[firstNewline+1 : closingBackticks]
		content = strings.TrimSpace(content)
	}

	return content
}
