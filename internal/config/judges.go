package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultMaxTokens      = 2048
	defaultTimeoutSeconds = 60
)

// LoadJudgesConfig reads the judge configuration from JUDGES_CONFIG_PATH
// (default configs/judges.yaml). A missing file is not an error: the built-in
// defaults apply.
func LoadJudgesConfig() (*JudgesConfig, error) {
	path := os.Getenv("JUDGES_CONFIG_PATH")
	if path == "" {
		path = "configs/judges.yaml"
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg JudgesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no judges.yaml is present.
func Default() JudgesConfig {
	cfg := JudgesConfig{
		Judges: JudgeSettings{
			DefaultModel: ModelConfig{
				MaxTokens:      defaultMaxTokens,
				Temperature:    0.0,
				Retry:          true,
				TimeoutSeconds: defaultTimeoutSeconds,
			},
		},
		Aggregation: AggregationConfig{
			FactualWeight:     0.4,
			QualityWeight:     0.3,
			ConsistencyWeight: 0.3,
		},
	}
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *JudgesConfig) {
	if cfg.Judges.DefaultModel.MaxTokens == 0 {
		cfg.Judges.DefaultModel.MaxTokens = defaultMaxTokens
	}
	if cfg.Judges.DefaultModel.TimeoutSeconds == 0 {
		cfg.Judges.DefaultModel.TimeoutSeconds = defaultTimeoutSeconds
	}

	if cfg.Aggregation.FactualWeight == 0 && cfg.Aggregation.QualityWeight == 0 && cfg.Aggregation.ConsistencyWeight == 0 {
		cfg.Aggregation = AggregationConfig{
			FactualWeight:     0.4,
			QualityWeight:     0.3,
			ConsistencyWeight: 0.3,
		}
	}

	cfg.Judges.FactualCompleteness = mergeModel(cfg.Judges.FactualCompleteness, cfg.Judges.DefaultModel)
	cfg.Judges.Quality = mergeModel(cfg.Judges.Quality, cfg.Judges.DefaultModel)
	cfg.Judges.ParsingConsistency = mergeModel(cfg.Judges.ParsingConsistency, cfg.Judges.DefaultModel)
}

// mergeModel fills unset override fields from the default model. Retry cannot
// be partially overridden because false is indistinguishable from unset; an
// override block always states its own retry policy.
func mergeModel(override *ModelConfig, def ModelConfig) *ModelConfig {
	if override == nil {
		merged := def
		return &merged
	}
	if override.MaxTokens == 0 {
		override.MaxTokens = def.MaxTokens
	}
	if override.Temperature == 0 {
		override.Temperature = def.Temperature
	}
	if override.TimeoutSeconds == 0 {
		override.TimeoutSeconds = def.TimeoutSeconds
	}
	return override
}

func (c *JudgesConfig) Validate() error {
	for name, m := range map[string]*ModelConfig{
		"default_model":        &c.Judges.DefaultModel,
		"factual_completeness": c.Judges.FactualCompleteness,
		"quality":              c.Judges.Quality,
		"parsing_consistency":  c.Judges.ParsingConsistency,
	} {
		if m == nil {
			continue
		}
		if m.MaxTokens < 0 {
			return fmt.Errorf("judge %s: negative max_tokens %d", name, m.MaxTokens)
		}
		if m.Temperature < 0 || m.Temperature > 1 {
			return fmt.Errorf("judge %s: invalid temperature %.2f, must be in [0, 1]", name, m.Temperature)
		}
		if m.TimeoutSeconds < 0 {
			return fmt.Errorf("judge %s: negative timeout_seconds %d", name, m.TimeoutSeconds)
		}
	}

	sum := c.Aggregation.FactualWeight + c.Aggregation.QualityWeight + c.Aggregation.ConsistencyWeight
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("aggregation weights must sum to 1.0, got %.4f", sum)
	}

	return nil
}
