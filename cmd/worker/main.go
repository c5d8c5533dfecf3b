package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/setup"
	"github.com/invoicelab/insights-agent/internal/setup/logger"
	"github.com/invoicelab/insights-agent/internal/stream"
	"github.com/invoicelab/insights-agent/internal/stream/redis"
)

func main() {
	// Long-running service: structured JSON logs instead of console output.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log := logger.New(getEnv("LOG_LEVEL", "info"))

	// Load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := setup.LoadConfig()
	deps, err := setup.Wire(ctx, cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	streamCfg := &stream.StreamConfig{
		Provider: os.Getenv("STREAM_PROVIDER"),
		RedisConfig: redis.NewRedisStreamConfig(
			getEnv("REDIS_ADDR", "localhost:6379"),
			os.Getenv("REDIS_PASSWORD"),
			getEnv("INSIGHTS_STREAM", "insight-requests"),
			getEnv("INSIGHTS_RESULTS_STREAM", "insight-results"),
			getEnv("INSIGHTS_GROUP", "insights-group"),
			os.Getenv("HOSTNAME"),
		),
	}

	consumer, err := stream.NewStreamConsumer(ctx, streamCfg, deps.Evaluator, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create stream consumer")
	}

	// Setup consumer
	if err := consumer.Setup(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to setup consumer")
	}

	// Start consumer
	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Consumer stopped with error")
		}
	}()

	// Wait for context to be done
	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	log.Info().Msg("Insights Agent worker stopped")
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}
