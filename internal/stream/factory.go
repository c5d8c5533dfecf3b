package stream

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/executor"
	redisconn "github.com/invoicelab/insights-agent/internal/redis"
	"github.com/invoicelab/insights-agent/internal/stream/redis"
)

const defaultProvider = "redis"

type StreamConfig struct {
	Provider    string // only "redis" for now
	RedisConfig *redis.RedisStreamConfig
}

// NewStreamConsumer builds the consumer for the configured provider.
func NewStreamConsumer(
	ctx context.Context,
	cfg *StreamConfig,
	evaluator *executor.Evaluator,
	logger *zerolog.Logger,
) (StreamConsumer, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = defaultProvider
	}

	switch provider {
	case "redis":
		if cfg.RedisConfig == nil {
			return nil, fmt.Errorf("redis config required")
		}

		client, err := redisconn.Connect(
			ctx,
			cfg.RedisConfig.RedisAddr,
			cfg.RedisConfig.RedisPassword,
			5,
			logger,
		)
		if err != nil {
			return nil, err
		}

		return redis.NewConsumer(client, cfg.RedisConfig, evaluator, logger), nil

	default:
		return nil, fmt.Errorf("unsupported stream provider: %s", cfg.Provider)
	}
}
