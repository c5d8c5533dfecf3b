package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/invoicelab/insights-agent/internal/extract"
	"github.com/invoicelab/insights-agent/internal/setup"
)

// Evaluates a single invoice image. When no insights are supplied the full
// workflow runs first: OCR parse, insight generation, then evaluation with
// the OCR text feeding the parsing-consistency judge.
func main() {
	image := flag.String("image", "", "Path to the invoice image")
	insights := flag.String("insights", "", "Insights to evaluate, separated by '||'. Generated when empty")
	parserText := flag.String("parser-text", "", "Optional OCR raw text for the parsing consistency judge")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger

	if *image == "" {
		log.Fatal().Msg("required flag -image not provided")
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := setup.LoadConfig()
	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	img, err := extract.LoadImage(*image)
	if err != nil {
		log.Fatal().Err(err).Str("image", *image).Msg("Failed to load image")
	}

	insightList := splitInsights(*insights)
	parserRawText := *parserText

	if len(insightList) == 0 {
		log.Info().Msg("No insights provided, running the generation workflow")

		result, err := deps.Workflow.Run(ctx, filepath.Base(img.Path), img.Data)
		if err != nil {
			log.Fatal().Err(err).Msg("Workflow failed")
		}

		insightList = result.Insights
		if parserRawText == "" {
			parserRawText = result.ParsedInvoice.RawText
		}
	}

	evalResult, err := deps.Evaluator.Evaluate(ctx, img, insightList, parserRawText)
	if err != nil {
		log.Fatal().Err(err).Msg("Evaluation failed")
	}

	output, err := json.MarshalIndent(evalResult, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal result")
	}
	fmt.Println(string(output))
}

func splitInsights(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var insights []string
	for _, part := range strings.Split(raw, "||") {
		part = strings.TrimSpace(part)
		if part != "" {
			insights = append(insights, part)
		}
	}
	return insights
}
