// Package config loads service configuration from a YAML file, MEGAFLEX_
// environment variables and built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Detector   DetectorConfig   `mapstructure:"detector"`
	Reclassify ReclassifyConfig `mapstructure:"reclassify"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	StaticDir string `mapstructure:"static_dir"`
}

// StorageConfig selects where analyses and thumbnails live.
type StorageConfig struct {
	DBPath     string   `mapstructure:"db_path"`
	Thumbnails string   `mapstructure:"thumbnails"`
	LocalDir   string   `mapstructure:"local_dir"`
	S3         S3Config `mapstructure:"s3"`
}

// S3Config holds bucket settings for the s3 thumbnail backend.
type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	Prefix string `mapstructure:"prefix"`
}

// AnalysisConfig tunes the sampling pipeline and the engine.
type AnalysisConfig struct {
	SampleInterval float64       `mapstructure:"sample_interval"`
	SettleDelay    time.Duration `mapstructure:"settle_delay"`
	DedupGap       float64       `mapstructure:"dedup_gap"`
	DedupPolicy    string        `mapstructure:"dedup_policy"`
	BaselineSeed   int64         `mapstructure:"baseline_seed"`
	FixedBaseline  float64       `mapstructure:"fixed_baseline"`
	ThumbnailWidth int           `mapstructure:"thumbnail_width"`
}

// DetectorConfig configures the MediaPipe pose subprocess.
type DetectorConfig struct {
	ScriptPath    string        `mapstructure:"script_path"`
	PythonPath    string        `mapstructure:"python_path"`
	MinConfidence float64       `mapstructure:"min_confidence"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
}

// ReclassifyConfig configures the vision and text providers.
type ReclassifyConfig struct {
	PluginDir     string        `mapstructure:"plugin_dir"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Concurrency   int           `mapstructure:"concurrency"`
	MinConfidence int           `mapstructure:"min_confidence"`
	OpenAI        OpenAIConfig  `mapstructure:"openai"`
}

// OpenAIConfig enables the OpenAI provider when APIKey is set.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from path and environment variables. An empty
// path uses defaults and the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("MEGAFLEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.static_dir", "")

	v.SetDefault("storage.db_path", "./data/megaflex.db")
	v.SetDefault("storage.thumbnails", "local")
	v.SetDefault("storage.local_dir", "./data/objects")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "")
	v.SetDefault("storage.s3.prefix", "megaflex")

	v.SetDefault("analysis.sample_interval", 1.0)
	v.SetDefault("analysis.settle_delay", "100ms")
	v.SetDefault("analysis.dedup_gap", 2.0)
	v.SetDefault("analysis.dedup_policy", "time")
	v.SetDefault("analysis.baseline_seed", 1)
	v.SetDefault("analysis.fixed_baseline", 0)
	v.SetDefault("analysis.thumbnail_width", 320)

	v.SetDefault("detector.script_path", "")
	v.SetDefault("detector.python_path", "")
	v.SetDefault("detector.min_confidence", 0.5)
	v.SetDefault("detector.idle_timeout", "30s")

	v.SetDefault("reclassify.plugin_dir", "./plugins")
	v.SetDefault("reclassify.timeout", "60s")
	v.SetDefault("reclassify.concurrency", 4)
	v.SetDefault("reclassify.min_confidence", 50)
	v.SetDefault("reclassify.openai.api_key", "")
	v.SetDefault("reclassify.openai.model", "gpt-4o")
	v.SetDefault("reclassify.openai.base_url", "https://api.openai.com/v1")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	switch c.Storage.Thumbnails {
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir is required for local thumbnails")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for s3 thumbnails")
		}
	default:
		return fmt.Errorf("storage.thumbnails must be one of: local, s3")
	}

	if c.Analysis.SampleInterval <= 0 {
		return fmt.Errorf("analysis.sample_interval must be positive")
	}
	if c.Analysis.SettleDelay < 0 {
		return fmt.Errorf("analysis.settle_delay must not be negative")
	}
	if c.Analysis.DedupGap <= 0 {
		return fmt.Errorf("analysis.dedup_gap must be positive")
	}
	if c.Analysis.DedupPolicy != "time" && c.Analysis.DedupPolicy != "first" {
		return fmt.Errorf("analysis.dedup_policy must be one of: time, first")
	}
	if c.Analysis.FixedBaseline != 0 && (c.Analysis.FixedBaseline < 0 || c.Analysis.FixedBaseline > 100) {
		return fmt.Errorf("analysis.fixed_baseline must be between 0 and 100")
	}
	if c.Analysis.ThumbnailWidth < 16 {
		return fmt.Errorf("analysis.thumbnail_width must be at least 16")
	}

	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		return fmt.Errorf("detector.min_confidence must be between 0.0 and 1.0")
	}

	if c.Reclassify.Timeout <= 0 {
		return fmt.Errorf("reclassify.timeout must be positive")
	}
	if c.Reclassify.Concurrency < 1 {
		return fmt.Errorf("reclassify.concurrency must be at least 1")
	}
	if c.Reclassify.MinConfidence < 0 || c.Reclassify.MinConfidence > 100 {
		return fmt.Errorf("reclassify.min_confidence must be between 0 and 100")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
