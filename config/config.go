// Package config loads and validates the engine's environment
// configuration, following the teacher codebase's viper-based
// defaults-then-env-override loading convention.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment tags a deployment for logging purposes only.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds the engine's full runtime configuration.
type Config struct {
	MongoDBURI            string        `mapstructure:"MONGODB_URI"`
	SentryDSN             string        `mapstructure:"SENTRY_DSN"`
	ModerationLengthInS   int64         `mapstructure:"MODERATION_LENGTH_IN_S"`
	ModerationThreshold   float64       `mapstructure:"MODERATION_THRESHOLD"`
	Environment           Environment   `mapstructure:"ENVIRONMENT"`
	SupabaseURL           string        `mapstructure:"SUPABASE_URL"`
	SupabaseKey           string        `mapstructure:"SUPABASE_KEY"`
	TimeoutSecs           int64         `mapstructure:"TIMEOUT_SECS"`
	GenerationTimeoutMS   int64         `mapstructure:"GENERATION_TIMEOUT_MS"`
	LogLevel              string        `mapstructure:"LOG_LEVEL"`
}

// ModerationLength returns ModerationLengthInS as a time.Duration.
func (c *Config) ModerationLength() time.Duration {
	return time.Duration(c.ModerationLengthInS) * time.Second
}

// Timeout returns TimeoutSecs as a time.Duration, or zero if unset.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSecs <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSecs) * time.Second
}

// GenerationTimeout returns GenerationTimeoutMS as a time.Duration.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.GenerationTimeoutMS) * time.Millisecond
}

// IsRelease reports whether Environment is anything other than development.
func (c *Config) IsRelease() bool {
	return c.Environment != EnvDevelopment
}

// LoadConfig loads configuration from environment variables, with an
// optional config.yaml overlay and the defaults below, mirroring the
// teacher's config.LoadConfig shape.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("MODERATION_LENGTH_IN_S", 7*24*60*60)
	viper.SetDefault("MODERATION_THRESHOLD", 0.25)
	viper.SetDefault("ENVIRONMENT", string(EnvProduction))
	viper.SetDefault("TIMEOUT_SECS", 0)
	viper.SetDefault("GENERATION_TIMEOUT_MS", 5000)
	viper.SetDefault("LOG_LEVEL", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("fatal error config file: %w", err)
		}
	}

	// Spec §6 names these env vars literally (no service prefix); bind
	// each explicitly under its bare name.
	for _, key := range []string{
		"MONGODB_URI", "SENTRY_DSN", "MODERATION_LENGTH_IN_S",
		"MODERATION_THRESHOLD", "ENVIRONMENT", "SUPABASE_URL",
		"SUPABASE_KEY", "TIMEOUT_SECS", "GENERATION_TIMEOUT_MS", "LOG_LEVEL",
	} {
		if err := viper.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate enforces the required/optional rules from
// moderation-service's original config loader.
func (c *Config) validate() error {
	if strings.TrimSpace(c.MongoDBURI) == "" {
		return fmt.Errorf("MONGODB_URI is required and must not be empty")
	}
	if strings.TrimSpace(c.SupabaseURL) == "" {
		return fmt.Errorf("SUPABASE_URL is required and must not be empty")
	}
	if strings.TrimSpace(c.SupabaseKey) == "" {
		return fmt.Errorf("SUPABASE_KEY is required and must not be empty")
	}
	if c.SentryDSN == "" && c.IsRelease() {
		return fmt.Errorf("SENTRY_DSN is required outside of development environments")
	}
	switch c.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("ENVIRONMENT must be one of development|staging|production, got %q", c.Environment)
	}
	if c.ModerationThreshold < 0 || c.ModerationThreshold > 1 {
		return fmt.Errorf("MODERATION_THRESHOLD must be in [0,1], got %v", c.ModerationThreshold)
	}
	if c.TimeoutSecs < 0 {
		return fmt.Errorf("TIMEOUT_SECS must be > 0 when set, got %v", c.TimeoutSecs)
	}
	if c.GenerationTimeoutMS <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT_MS must be > 0, got %v", c.GenerationTimeoutMS)
	}
	return nil
}
