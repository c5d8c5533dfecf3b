package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/models"
)

const convertPath = "/v1alpha/convert/file"

// Client parses invoice images through a docling-serve instance. The service
// converts the image to markdown, which becomes the invoice's raw text.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zerolog.Logger
}

func NewClient(baseURL string, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

type convertResponse struct {
	Document struct {
		MDContent string `json:"md_content"`
	} `json:"document"`
	Status string `json:"status"`
}

// Parse uploads the image for OCR conversion and returns the extracted
// markdown as the invoice raw text.
func (c *Client) Parse(ctx context.Context, filename string, data []byte) (*models.ParsedInvoice, error) {
	now := time.Now()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+convertPath, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create OCR request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("OCR service returned status %d: %s", resp.StatusCode, payload)
	}

	var converted convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&converted); err != nil {
		return nil, fmt.Errorf("failed to decode OCR response: %w", err)
	}

	c.logger.Info().
		Str("file", filename).
		Int("chars", len(converted.Document.MDContent)).
		Dur("duration", time.Since(now)).
		Msg("invoice parsed via OCR")

	return &models.ParsedInvoice{RawText: converted.Document.MDContent}, nil
}
