package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/llm"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// MockVisionClient returns a canned extraction and records the last request.
type MockVisionClient struct {
	ResponseToReturn *llm.LLMResponse
	ErrorToReturn    error
	CallCount        int
	LastRequest      llm.VisionRequest
}

func (m *MockVisionClient) ExtractText(ctx context.Context, req llm.VisionRequest) (*llm.LLMResponse, error) {
	m.CallCount++
	m.LastRequest = req
	if m.ErrorToReturn != nil {
		return nil, m.ErrorToReturn
	}
	return m.ResponseToReturn, nil
}

func TestExtract_Success(t *testing.T) {
	mock := &MockVisionClient{ResponseToReturn: &llm.LLMResponse{Content: "INVOICE #42\nTotal: $500"}}
	extractor := NewExtractor(mock, 4096, newTestLogger())

	img := Image{Path: "invoice.png", Data: []byte{0x89, 0x50}, MIME: "image/png"}
	text, err := extractor.Extract(context.Background(), img)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if text != "INVOICE #42\nTotal: $500" {
		t.Errorf("unexpected extracted text: %q", text)
	}
	if mock.LastRequest.MIMEType != "image/png" {
		t.Errorf("expected MIME type to be forwarded, got %q", mock.LastRequest.MIMEType)
	}
	if mock.LastRequest.MaxTokens != 4096 {
		t.Errorf("expected max_tokens=4096, got %d", mock.LastRequest.MaxTokens)
	}
	if !strings.Contains(mock.LastRequest.Instruction, "Extract ALL text") {
		t.Errorf("unexpected instruction: %q", mock.LastRequest.Instruction)
	}
}

func TestExtract_EmptyImageIsNotFound(t *testing.T) {
	mock := &MockVisionClient{ResponseToReturn: &llm.LLMResponse{Content: "text"}}
	extractor := NewExtractor(mock, 4096, newTestLogger())

	_, err := extractor.Extract(context.Background(), Image{Path: "missing.png"})

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
	if !strings.Contains(notFound.Error(), "missing.png") {
		t.Errorf("expected path in error, got %q", notFound.Error())
	}
	if mock.CallCount != 0 {
		t.Errorf("expected no vision calls for missing image, got %d", mock.CallCount)
	}
}

func TestExtract_VisionFailureWrapsExtractionError(t *testing.T) {
	cause := errors.New("model unavailable")
	mock := &MockVisionClient{ErrorToReturn: cause}
	extractor := NewExtractor(mock, 4096, newTestLogger())

	_, err := extractor.Extract(context.Background(), Image{Path: "invoice.png", Data: []byte{1}})

	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected *ExtractionError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected the underlying cause to be wrapped")
	}
	if !strings.HasPrefix(err.Error(), "failed to extract invoice text") {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestLoadImage_MissingFile(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "nope.png"))

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
}

func TestLoadImage_DetectsMIMEFromExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.png")
	if err := os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0644); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}

	img, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}

	if img.MIME != "image/png" {
		t.Errorf("expected image/png, got %q", img.MIME)
	}
	if len(img.Data) != 4 {
		t.Errorf("expected 4 bytes, got %d", len(img.Data))
	}
}
