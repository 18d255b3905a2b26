// Package config loads engine configuration from YAML files and the
// environment.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gozephyr/codeassist/errors"
	"github.com/gozephyr/codeassist/relevance"
)

// Config is the full engine configuration
type Config struct {
	Trigger   TriggerConfig `mapstructure:"trigger"`
	Cache     CacheConfig   `mapstructure:"cache"`
	Context   ContextConfig `mapstructure:"context"`
	Search    SearchConfig  `mapstructure:"search"`
	Relevance WeightsConfig `mapstructure:"relevance"`
	Log       LogConfig     `mapstructure:"log"`
}

// TriggerConfig tunes the debounce state machine
type TriggerConfig struct {
	DebounceDelay      time.Duration `mapstructure:"debounce_delay"`
	MaxSuggestionLines int           `mapstructure:"max_suggestion_lines"`
}

// CacheConfig tunes the completion and context caches
type CacheConfig struct {
	MaxSize       int           `mapstructure:"max_size"`
	CompletionTTL time.Duration `mapstructure:"completion_ttl"`
	ContextTTL    time.Duration `mapstructure:"context_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// ContextConfig tunes related-file selection
type ContextConfig struct {
	MaxRelatedFiles int `mapstructure:"max_related_files"`
	MaxFileBytes    int `mapstructure:"max_file_bytes"`
}

// SearchConfig tunes workspace search defaults
type SearchConfig struct {
	MaxResults      int      `mapstructure:"max_results"`
	ContextLines    int      `mapstructure:"context_lines"`
	MaxFiles        int      `mapstructure:"max_files"`
	ExcludePatterns []string `mapstructure:"exclude_patterns"`
}

// WeightsConfig mirrors the relevance weights
type WeightsConfig struct {
	OpenTab            float64 `mapstructure:"open_tab"`
	Import             float64 `mapstructure:"import"`
	Sibling            float64 `mapstructure:"sibling"`
	NameSimilarity     float64 `mapstructure:"name_similarity"`
	Base               float64 `mapstructure:"base"`
	ExactMatch         float64 `mapstructure:"exact_match"`
	FilenameMatch      float64 `mapstructure:"filename_match"`
	DeclarationKeyword float64 `mapstructure:"declaration_keyword"`
	LengthPenalty      float64 `mapstructure:"length_penalty"`
}

// LogConfig tunes logging
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Weights converts the config section to relevance weights
func (w WeightsConfig) Weights() relevance.Weights {
	return relevance.Weights{
		OpenTab:            w.OpenTab,
		Import:             w.Import,
		Sibling:            w.Sibling,
		NameSimilarity:     w.NameSimilarity,
		Base:               w.Base,
		ExactMatch:         w.ExactMatch,
		FilenameMatch:      w.FilenameMatch,
		DeclarationKeyword: w.DeclarationKeyword,
		LengthPenalty:      w.LengthPenalty,
	}
}

// Default returns the built-in configuration
func Default() *Config {
	weights := relevance.DefaultWeights()
	return &Config{
		Trigger: TriggerConfig{
			DebounceDelay:      500 * time.Millisecond,
			MaxSuggestionLines: 12,
		},
		Cache: CacheConfig{
			MaxSize:       100,
			CompletionTTL: 5 * time.Minute,
			ContextTTL:    30 * time.Second,
			SweepInterval: time.Minute,
		},
		Context: ContextConfig{
			MaxRelatedFiles: 5,
			MaxFileBytes:    64 * 1024,
		},
		Search: SearchConfig{
			MaxResults:   50,
			ContextLines: 2,
			MaxFiles:     2000,
		},
		Relevance: WeightsConfig{
			OpenTab:            weights.OpenTab,
			Import:             weights.Import,
			Sibling:            weights.Sibling,
			NameSimilarity:     weights.NameSimilarity,
			Base:               weights.Base,
			ExactMatch:         weights.ExactMatch,
			FilenameMatch:      weights.FilenameMatch,
			DeclarationKeyword: weights.DeclarationKeyword,
			LengthPenalty:      weights.LengthPenalty,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from the given file, layered over the defaults
// and overridable through CODEASSIST_* environment variables. An empty path
// loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CODEASSIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap("config.Load", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap("config.Load", path, errors.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with
func (c *Config) Validate() error {
	if c.Trigger.DebounceDelay <= 0 {
		return errors.Wrap("config.Validate", "trigger.debounce_delay", errors.ErrInvalidConfig)
	}
	if c.Cache.MaxSize <= 0 {
		return errors.Wrap("config.Validate", "cache.max_size", errors.ErrInvalidConfig)
	}
	if c.Context.MaxRelatedFiles < 0 {
		return errors.Wrap("config.Validate", "context.max_related_files", errors.ErrInvalidConfig)
	}
	if c.Search.MaxResults <= 0 {
		return errors.Wrap("config.Validate", "search.max_results", errors.ErrInvalidConfig)
	}
	if c.Search.ContextLines < 0 {
		return errors.Wrap("config.Validate", "search.context_lines", errors.ErrInvalidConfig)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Wrap("config.Validate", "log.level", errors.ErrInvalidConfig)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("trigger.debounce_delay", d.Trigger.DebounceDelay)
	v.SetDefault("trigger.max_suggestion_lines", d.Trigger.MaxSuggestionLines)
	v.SetDefault("cache.max_size", d.Cache.MaxSize)
	v.SetDefault("cache.completion_ttl", d.Cache.CompletionTTL)
	v.SetDefault("cache.context_ttl", d.Cache.ContextTTL)
	v.SetDefault("cache.sweep_interval", d.Cache.SweepInterval)
	v.SetDefault("context.max_related_files", d.Context.MaxRelatedFiles)
	v.SetDefault("context.max_file_bytes", d.Context.MaxFileBytes)
	v.SetDefault("search.max_results", d.Search.MaxResults)
	v.SetDefault("search.context_lines", d.Search.ContextLines)
	v.SetDefault("search.max_files", d.Search.MaxFiles)
	v.SetDefault("search.exclude_patterns", d.Search.ExcludePatterns)
	v.SetDefault("relevance.open_tab", d.Relevance.OpenTab)
	v.SetDefault("relevance.import", d.Relevance.Import)
	v.SetDefault("relevance.sibling", d.Relevance.Sibling)
	v.SetDefault("relevance.name_similarity", d.Relevance.NameSimilarity)
	v.SetDefault("relevance.base", d.Relevance.Base)
	v.SetDefault("relevance.exact_match", d.Relevance.ExactMatch)
	v.SetDefault("relevance.filename_match", d.Relevance.FilenameMatch)
	v.SetDefault("relevance.declaration_keyword", d.Relevance.DeclarationKeyword)
	v.SetDefault("relevance.length_penalty", d.Relevance.LengthPenalty)
	v.SetDefault("log.level", d.Log.Level)
}
