package config

import (
	"os"
	"strconv"
	"strings"

	"gocredible/domain/posterior"
	"gocredible/internal/errors"
	inference "gocredible/internal/posterior"
)

// Config represents the complete application configuration
type Config struct {
	Sampler posterior.SamplerConfig
	// Prior is "uniform" or "beta(a,b)"
	Prior    string
	Data     DataConfig
	Tree     TreeConfig
	Server   ServerConfig
	Evaluate EvaluateConfig
}

// DataConfig holds dataset loading and split settings
type DataConfig struct {
	File         string
	LabelColumn  string
	TestFraction float64
	SplitSeed    int64
}

// TreeConfig holds decision tree hyperparameters
type TreeConfig struct {
	MaxDepth        int
	MinSamplesSplit int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	UIPort  string
	GinMode string
}

// EvaluateConfig holds the sample sizes compared by an experiment.
// Zero means the full test set.
type EvaluateConfig struct {
	SampleSizes []int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	sampler, err := loadSamplerConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load sampler configuration")
	}

	sizes, err := ParseSampleSizes(getEnvOrDefault("SAMPLE_SIZES", "100,0"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load evaluation configuration")
	}

	config := &Config{
		Sampler:  *sampler,
		Prior:    getEnvOrDefault("SAMPLER_PRIOR", "uniform"),
		Data:     *loadDataConfig(),
		Tree:     *loadTreeConfig(),
		Server:   *loadServerConfig(),
		Evaluate: EvaluateConfig{SampleSizes: sizes},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadSamplerConfig() (*posterior.SamplerConfig, error) {
	defaults := posterior.DefaultSamplerConfig()

	policy, err := posterior.ParseResamplePolicy(getEnvOrDefault("SAMPLER_RESAMPLE_POLICY", string(defaults.ResamplePolicy)))
	if err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}

	return &posterior.SamplerConfig{
		StepSize:       getEnvFloatOrDefault("SAMPLER_STEP_SIZE", defaults.StepSize),
		NumSteps:       getEnvIntOrDefault("SAMPLER_NUM_STEPS", defaults.NumSteps),
		Warmup:         getEnvIntOrDefault("SAMPLER_WARMUP", defaults.Warmup),
		Samples:        getEnvIntOrDefault("SAMPLER_SAMPLES", defaults.Samples),
		Resample:       getEnvIntOrDefault("SAMPLER_RESAMPLE", defaults.Resample),
		ResamplePolicy: policy,
		Confidence:     getEnvFloatOrDefault("SAMPLER_CONFIDENCE", defaults.Confidence),
		Seed:           getEnvInt64OrDefault("SAMPLER_SEED", defaults.Seed),
		AdaptStepSize:  getEnvBoolOrDefault("SAMPLER_ADAPT", defaults.AdaptStepSize),
		TargetAccept:   getEnvFloatOrDefault("SAMPLER_TARGET_ACCEPT", defaults.TargetAccept),
	}, nil
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		File:         getEnvOrDefault("DATASET_FILE", ""),
		LabelColumn:  getEnvOrDefault("DATASET_LABEL", "label"),
		TestFraction: getEnvFloatOrDefault("TEST_FRACTION", 0.2),
		SplitSeed:    getEnvInt64OrDefault("SPLIT_SEED", 42),
	}
}

func loadTreeConfig() *TreeConfig {
	return &TreeConfig{
		MaxDepth:        getEnvIntOrDefault("TREE_MAX_DEPTH", 12),
		MinSamplesSplit: getEnvIntOrDefault("TREE_MIN_SAMPLES_SPLIT", 2),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		UIPort:  getEnvOrDefault("UI_PORT", "8081"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func validateConfig(config *Config) error {
	if err := config.Sampler.Validate(); err != nil {
		return errors.Wrap(errors.ConfigInvalid(err.Error()), "sampler")
	}
	if _, err := inference.ParsePrior(config.Prior); err != nil {
		return errors.ConfigInvalid("SAMPLER_PRIOR: " + err.Error())
	}
	if !(config.Data.TestFraction > 0 && config.Data.TestFraction < 1) {
		return errors.ConfigInvalid("TEST_FRACTION must be in (0, 1)")
	}
	if config.Data.LabelColumn == "" {
		return errors.ConfigInvalid("DATASET_LABEL is required")
	}
	if config.Tree.MaxDepth < 1 {
		return errors.ConfigInvalid("TREE_MAX_DEPTH must be at least 1")
	}
	if config.Tree.MinSamplesSplit < 2 {
		return errors.ConfigInvalid("TREE_MIN_SAMPLES_SPLIT must be at least 2")
	}
	if len(config.Evaluate.SampleSizes) == 0 {
		return errors.ConfigInvalid("SAMPLE_SIZES must list at least one size")
	}
	return nil
}

// ParseSampleSizes parses a comma separated list such as "100,0"
func ParseSampleSizes(raw string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, errors.ConfigInvalid("SAMPLE_SIZES entries must be non-negative integers, got " + part)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
