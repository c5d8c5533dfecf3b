package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/aggregator"
	"github.com/invoicelab/insights-agent/internal/config"
	"github.com/invoicelab/insights-agent/internal/executor"
	"github.com/invoicelab/insights-agent/internal/extract"
	"github.com/invoicelab/insights-agent/internal/generate"
	"github.com/invoicelab/insights-agent/internal/judge"
	"github.com/invoicelab/insights-agent/internal/llm"
	"github.com/invoicelab/insights-agent/internal/llm/bedrock"
	"github.com/invoicelab/insights-agent/internal/llm/gemini"
	"github.com/invoicelab/insights-agent/internal/llm/gpt"
	"github.com/invoicelab/insights-agent/internal/ocr"
	"github.com/invoicelab/insights-agent/internal/workflow"
)

type Config struct {
	Provider      string
	GeminiAPIKey  string
	GeminiModelID string
	AWSRegion     string
	ClaudeModelID string
	OpenAIKey     string
	OpenAIModelID string
	OCRBaseURL    string

	ExtractionMaxTokens int
	GenerationMaxTokens int
	GenerationTemp      float64
}

type Dependencies struct {
	Evaluator *executor.Evaluator
	Workflow  *workflow.Pipeline
	Logger    *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		Provider:      getEnv("EVAL_PROVIDER", "gemini"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID: getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:     getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID: getEnv("OPEN_AI_MODEL_ID", ""),
		OCRBaseURL:    getEnv("OCR_BASE_URL", "http://localhost:5001"),

		ExtractionMaxTokens: getEnvInt("EXTRACTION_MAX_TOKENS", 4096),
		GenerationMaxTokens: getEnvInt("GENERATION_MAX_TOKENS", 1024),
		GenerationTemp:      getEnvFloat("GENERATION_TEMPERATURE", 0.7),
	}
}

// Wire builds the full dependency graph. The Gemini client is always created
// because text extraction requires a vision model; the judge and generation
// clients follow the configured provider.
func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	visionClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	llmClient, err := createLLMClient(ctx, cfg, visionClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	judgesConfig, err := config.LoadJudgesConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load judges config: %w", err)
	}

	factual := judge.NewFactualCompletenessJudge(llmClient, modelParams(judgesConfig.Judges.FactualCompleteness), logger)
	quality := judge.NewQualityJudge(llmClient, modelParams(judgesConfig.Judges.Quality), logger)
	consistency := judge.NewParsingConsistencyJudge(llmClient, modelParams(judgesConfig.Judges.ParsingConsistency), logger)
	runner := judge.NewRunner(factual, quality, consistency, logger)

	agg := aggregator.New(aggregator.Weights{
		FactualCompleteness: judgesConfig.Aggregation.FactualWeight,
		Quality:             judgesConfig.Aggregation.QualityWeight,
		ParsingConsistency:  judgesConfig.Aggregation.ConsistencyWeight,
	}, logger)

	extractor := extract.NewExtractor(visionClient, cfg.ExtractionMaxTokens, logger)
	evaluator := executor.NewEvaluator(extractor, runner, agg, logger)

	parser := ocr.NewClient(cfg.OCRBaseURL, logger)
	generator := generate.NewGenerator(llmClient, cfg.GenerationMaxTokens, cfg.GenerationTemp, logger)
	pipeline := workflow.NewPipeline(parser, generator, logger)

	return &Dependencies{
		Evaluator: evaluator,
		Workflow:  pipeline,
		Logger:    logger,
	}, nil
}

func modelParams(m *config.ModelConfig) judge.ModelParams {
	return judge.ModelParams{
		MaxTokens:   m.MaxTokens,
		Temperature: m.Temperature,
		Retry:       m.Retry,
		Timeout:     time.Duration(m.TimeoutSeconds) * time.Second,
	}
}

func createLLMClient(ctx context.Context, cfg *Config, geminiClient *gemini.Client) (llm.LLMClient, error) {
	switch cfg.Provider {
	case "gemini":
		return geminiClient, nil
	case "bedrock":
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	case "openai":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	default:
		return geminiClient, nil
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		value = defaultValue
	}

	return value
}
