package mcpadapter

import (
	"context"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/invoicelab/insights-agent/internal/executor"
	"github.com/invoicelab/insights-agent/internal/extract"
	"github.com/invoicelab/insights-agent/internal/models"
	"github.com/invoicelab/insights-agent/internal/workflow"
)

// EvaluateInput is the MCP tool input schema (matches HTTP API field names).
type EvaluateInput struct {
	ImagePath     string   `json:"image_path" jsonschema:"filesystem path to the invoice image"`
	Insights      []string `json:"insights" jsonschema:"generated insights to evaluate"`
	ParserRawText string   `json:"parser_raw_text,omitempty" jsonschema:"optional OCR text for the parsing consistency judge"`
}

// AnalyzeInput is the MCP tool input schema for parse-and-generate.
type AnalyzeInput struct {
	ImagePath string `json:"image_path" jsonschema:"filesystem path to the invoice image"`
}

// AnalyzeOutput carries the workflow result back to the MCP client.
type AnalyzeOutput struct {
	RawText    string   `json:"raw_text"`
	Insights   []string `json:"insights"`
	ParserUsed string   `json:"parser_used"`
}

// NewEvaluateHandler returns a tool handler that uses the given evaluator.
// Pass the returned function to mcp.AddTool.
func NewEvaluateHandler(evaluator *executor.Evaluator) func(context.Context, *mcp.CallToolRequest, EvaluateInput) (*mcp.CallToolResult, models.EvaluationResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EvaluateInput) (*mcp.CallToolResult, models.EvaluationResult, error) {
		return EvaluateInsights(ctx, evaluator, req, input)
	}
}

// EvaluateInsights runs the evaluation pipeline and returns the result.
func EvaluateInsights(
	ctx context.Context,
	evaluator *executor.Evaluator,
	req *mcp.CallToolRequest,
	input EvaluateInput,
) (*mcp.CallToolResult, models.EvaluationResult, error) {
	img, err := extract.LoadImage(input.ImagePath)
	if err != nil {
		return nil, models.EvaluationResult{}, err
	}

	result, err := evaluator.Evaluate(ctx, img, input.Insights, input.ParserRawText)
	if err != nil {
		return nil, models.EvaluationResult{}, err
	}

	return nil, *result, nil
}

// NewAnalyzeHandler returns a tool handler for the parse-and-generate
// workflow. Pass the returned function to mcp.AddTool.
func NewAnalyzeHandler(pipeline *workflow.Pipeline) func(context.Context, *mcp.CallToolRequest, AnalyzeInput) (*mcp.CallToolResult, AnalyzeOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, AnalyzeOutput, error) {
		return AnalyzeInvoice(ctx, pipeline, req, input)
	}
}

// AnalyzeInvoice OCR-parses the invoice and generates insights.
func AnalyzeInvoice(
	ctx context.Context,
	pipeline *workflow.Pipeline,
	req *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	img, err := extract.LoadImage(input.ImagePath)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	result, err := pipeline.Run(ctx, filepath.Base(img.Path), img.Data)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	return nil, AnalyzeOutput{
		RawText:    result.ParsedInvoice.RawText,
		Insights:   result.Insights,
		ParserUsed: result.ParserUsed,
	}, nil
}
