package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/api/middleware"
	"github.com/invoicelab/insights-agent/internal/extract"
	"github.com/invoicelab/insights-agent/internal/models"
	"github.com/invoicelab/insights-agent/internal/workflow"
)

type Evaluator interface {
	Evaluate(ctx context.Context, img extract.Image, insights []string, parserRawText string) (*models.EvaluationResult, error)
}

type InsightPipeline interface {
	Run(ctx context.Context, filename string, data []byte) (*workflow.Result, error)
}

type Handler struct {
	evaluator Evaluator
	pipeline  InsightPipeline
	logger    *zerolog.Logger
}

func NewHandler(evaluator Evaluator, pipeline InsightPipeline, logger *zerolog.Logger) *Handler {
	return &Handler{
		evaluator: evaluator,
		pipeline:  pipeline,
		logger:    logger,
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// AnalyzeResponse is the output of the parse-and-generate endpoint.
type AnalyzeResponse struct {
	RequestID  string   `json:"request_id"`
	RawText    string   `json:"raw_text"`
	Insights   []string `json:"insights"`
	ParserUsed string   `json:"parser_used"`
}

// POST /api/v1/evaluate
// Body: EvaluationRequest
// Returns: EvaluationResult
func (h *Handler) Evaluate(req *restful.Request, resp *restful.Response) {
	var evalRequest models.EvaluationRequest
	if err := req.ReadEntity(&evalRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if evalRequest.RequestID == "" {
		evalRequest.RequestID = uuid.NewString()
	}
	if len(evalRequest.Insights) == 0 {
		middleware.HandleError(resp, fmt.Errorf("insights list must not be empty"), http.StatusBadRequest)
		return
	}

	img, err := resolveImage(evalRequest)
	if err != nil {
		status := http.StatusBadRequest
		var notFound *extract.NotFoundError
		if errors.As(err, &notFound) {
			status = http.StatusNotFound
		}
		middleware.HandleError(resp, err, status)
		return
	}

	h.logger.Info().
		Str("request_id", evalRequest.RequestID).
		Str("image", img.Path).
		Int("insights", len(evalRequest.Insights)).
		Msg("Start evaluation")

	ctx := req.Request.Context()
	result, err := h.evaluator.Evaluate(ctx, img, evalRequest.Insights, evalRequest.ParserRawText)
	if err != nil {
		var notFound *extract.NotFoundError
		if errors.As(err, &notFound) {
			middleware.HandleError(resp, err, http.StatusNotFound)
			return
		}
		var extraction *extract.ExtractionError
		if errors.As(err, &extraction) {
			middleware.HandleError(resp, err, http.StatusBadGateway)
			return
		}
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("request_id", evalRequest.RequestID).
		Float64("overall_score", result.OverallScore).
		Msg("Evaluation complete")

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// POST /api/v1/analyze
// Parses the invoice image and generates insights, without judging them.
func (h *Handler) Analyze(req *restful.Request, resp *restful.Response) {
	var evalRequest models.EvaluationRequest
	if err := req.ReadEntity(&evalRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if evalRequest.RequestID == "" {
		evalRequest.RequestID = uuid.NewString()
	}

	img, err := resolveImage(evalRequest)
	if err != nil {
		status := http.StatusBadRequest
		var notFound *extract.NotFoundError
		if errors.As(err, &notFound) {
			status = http.StatusNotFound
		}
		middleware.HandleError(resp, err, status)
		return
	}

	ctx := req.Request.Context()
	result, err := h.pipeline.Run(ctx, filepath.Base(img.Path), img.Data)
	if err != nil {
		middleware.HandleError(resp, err, http.StatusBadGateway)
		return
	}

	h.logger.Info().
		Str("request_id", evalRequest.RequestID).
		Int("insights", len(result.Insights)).
		Msg("Analysis complete")

	resp.WriteHeaderAndEntity(http.StatusOK, AnalyzeResponse{
		RequestID:  evalRequest.RequestID,
		RawText:    result.ParsedInvoice.RawText,
		Insights:   result.Insights,
		ParserUsed: result.ParserUsed,
	})
}

// Health handler GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}

// resolveImage materializes the request's image, preferring inline bytes over
// a filesystem path.
func resolveImage(req models.EvaluationRequest) (extract.Image, error) {
	if len(req.ImageData) > 0 {
		mimeType := req.MIMEType
		if mimeType == "" {
			mimeType = http.DetectContentType(req.ImageData)
		}
		return extract.Image{
			Path: req.ImagePath,
			Data: req.ImageData,
			MIME: mimeType,
		}, nil
	}

	if req.ImagePath == "" {
		return extract.Image{}, fmt.Errorf("either image_path or image_data is required")
	}

	return extract.LoadImage(req.ImagePath)
}
