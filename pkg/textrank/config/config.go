package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/textrank/pkg/textrank"
	"github.com/cognicore/textrank/pkg/textrank/internalerr"
	"github.com/cognicore/textrank/pkg/textrank/phrase"
	"github.com/cognicore/textrank/pkg/textrank/stopwords"
	"github.com/cognicore/textrank/pkg/textrank/summarize"
)

// Config is the file form of the engine settings
type Config struct {
	Algorithm     string           `yaml:"algorithm"`
	EdgeWeight    float64          `yaml:"edge_weight"`
	POSKept       []string         `yaml:"pos_kept"`
	TokenLookback int              `yaml:"token_lookback"`
	Scrubber      string           `yaml:"scrubber"`
	Stopwords     stopwords.Source `yaml:"stopwords"`
	Directed      bool             `yaml:"directed"`

	Threshold float64 `yaml:"threshold"`
	Method    string  `yaml:"method"`

	Focus       string  `yaml:"focus"`
	Bias        float64 `yaml:"bias"`
	DefaultBias float64 `yaml:"default_bias"`

	Damping   float64 `yaml:"damping"`
	MaxIter   int     `yaml:"max_iter"`
	Tolerance float64 `yaml:"tolerance"`

	ExcludeEntityLabels []string `yaml:"exclude_entity_labels"`

	Summary summarize.Options `yaml:"summary"`

	LogLevel string `yaml:"log_level"`
	DBPath   string `yaml:"db_path"`
}

// Default returns the configuration matching textrank.DefaultOptions
func Default() Config {
	opts := textrank.DefaultOptions()
	return Config{
		Algorithm:           string(opts.Algorithm),
		EdgeWeight:          opts.EdgeWeight,
		POSKept:             append([]string(nil), opts.POSKept...),
		TokenLookback:       opts.TokenLookback,
		Scrubber:            phrase.ScrubDefault,
		Threshold:           opts.Threshold,
		Method:              opts.Method,
		Bias:                opts.Bias,
		DefaultBias:         opts.DefaultBias,
		Damping:             opts.Damping,
		MaxIter:             opts.MaxIter,
		Tolerance:           opts.Tolerance,
		ExcludeEntityLabels: append([]string(nil), opts.ExcludeEntityLabels...),
		Summary:             summarize.DefaultOptions(),
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the
// file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from TEXTRANK_* environment variables
func ApplyEnv(cfg *Config) {
	cfg.Algorithm = getEnv("TEXTRANK_ALGORITHM", cfg.Algorithm)
	cfg.Scrubber = getEnv("TEXTRANK_SCRUBBER", cfg.Scrubber)
	cfg.TokenLookback = getEnvInt("TEXTRANK_TOKEN_LOOKBACK", cfg.TokenLookback)
	cfg.Directed = getEnvBool("TEXTRANK_DIRECTED", cfg.Directed)
	cfg.Threshold = getEnvFloat("TEXTRANK_THRESHOLD", cfg.Threshold)
	cfg.Method = getEnv("TEXTRANK_METHOD", cfg.Method)
	cfg.Focus = getEnv("TEXTRANK_FOCUS", cfg.Focus)
	cfg.Bias = getEnvFloat("TEXTRANK_BIAS", cfg.Bias)
	cfg.DefaultBias = getEnvFloat("TEXTRANK_DEFAULT_BIAS", cfg.DefaultBias)
	cfg.Damping = getEnvFloat("TEXTRANK_DAMPING", cfg.Damping)
	cfg.MaxIter = getEnvInt("TEXTRANK_MAX_ITER", cfg.MaxIter)
	cfg.Summary.LimitPhrases = getEnvInt("TEXTRANK_LIMIT_PHRASES", cfg.Summary.LimitPhrases)
	cfg.Summary.LimitSentences = getEnvInt("TEXTRANK_LIMIT_SENTENCES", cfg.Summary.LimitSentences)
	cfg.LogLevel = getEnv("TEXTRANK_LOG_LEVEL", cfg.LogLevel)
	cfg.DBPath = getEnv("TEXTRANK_DB_PATH", cfg.DBPath)
	if path := os.Getenv("TEXTRANK_STOPWORDS"); path != "" {
		cfg.Stopwords = stopwords.Source{Path: path}
	}
}

// Options converts the configuration into engine options. The logger is
// left unset.
func (c Config) Options() (textrank.Options, error) {
	scrub, err := phrase.ResolveScrubber(c.Scrubber)
	if err != nil {
		return textrank.Options{}, err
	}
	table, err := c.Stopwords.Resolve()
	if err != nil {
		return textrank.Options{}, fmt.Errorf("load stopwords: %w", err)
	}

	return textrank.Options{
		Algorithm:           textrank.Algorithm(c.Algorithm),
		EdgeWeight:          c.EdgeWeight,
		POSKept:             c.POSKept,
		TokenLookback:       c.TokenLookback,
		Scrubber:            scrub,
		Stopwords:           table,
		Directed:            c.Directed,
		Threshold:           c.Threshold,
		Method:              c.Method,
		Focus:               c.Focus,
		Bias:                c.Bias,
		DefaultBias:         c.DefaultBias,
		Damping:             c.Damping,
		MaxIter:             c.MaxIter,
		Tolerance:           c.Tolerance,
		ExcludeEntityLabels: c.ExcludeEntityLabels,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch os.Getenv(key) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
