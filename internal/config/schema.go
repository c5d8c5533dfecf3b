package config

// JudgesConfig is the root of configs/judges.yaml.
type JudgesConfig struct {
	Judges      JudgeSettings     `yaml:"judges"`
	Aggregation AggregationConfig `yaml:"aggregation"`
}

// JudgeSettings holds the shared model defaults plus optional per-judge
// overrides. A nil override means the judge runs with the default model
// parameters.
type JudgeSettings struct {
	DefaultModel        ModelConfig  `yaml:"default_model"`
	FactualCompleteness *ModelConfig `yaml:"factual_completeness"`
	Quality             *ModelConfig `yaml:"quality"`
	ParsingConsistency  *ModelConfig `yaml:"parsing_consistency"`
}

// ModelConfig contains the model invocation parameters for one judge.
type ModelConfig struct {
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	Retry          bool    `yaml:"retry"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// AggregationConfig contains the weights folding the three judge scores into
// the overall score. The weights must sum to 1.0.
type AggregationConfig struct {
	FactualWeight     float64 `yaml:"factual_weight"`
	QualityWeight     float64 `yaml:"quality_weight"`
	ConsistencyWeight float64 `yaml:"consistency_weight"`
}
