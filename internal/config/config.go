// Package config loads and validates the scanner configuration from a YAML
// file, with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mdewey/buywrite/internal/core"
)

type Config struct {
	Schwab    SchwabConfig    `mapstructure:"schwab"`
	Watchlist []string        `mapstructure:"watchlist"`
	Filter    FilterConfig    `mapstructure:"filter"`
	Dividends DividendsConfig `mapstructure:"dividends"`
	Data      DataConfig      `mapstructure:"data"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Advisor   AdvisorConfig   `mapstructure:"advisor"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// SchwabConfig holds the broker API credentials and endpoints. AppKey and
// AppSecret come from the Schwab developer portal.
type SchwabConfig struct {
	AppKey      string        `mapstructure:"app_key"`
	AppSecret   string        `mapstructure:"app_secret"`
	RedirectURL string        `mapstructure:"redirect_url"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// FilterConfig holds the contract eligibility thresholds.
type FilterConfig struct {
	MinPremium          float64 `mapstructure:"min_premium"`
	MinDaysToExpiration float64 `mapstructure:"min_days_to_expiration"`
	StrikeDiscount      float64 `mapstructure:"strike_discount"`
}

// DividendsConfig bounds the return vector.
type DividendsConfig struct {
	// MaxCaptures is the largest dividend count a return is computed for.
	MaxCaptures int `mapstructure:"max_captures"`
}

// DataConfig holds local output locations.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// ArchiveConfig selects the cold-storage backend. Kind is "local", "s3", or
// empty to disable archiving.
type ArchiveConfig struct {
	Kind string   `mapstructure:"kind"`
	Path string   `mapstructure:"path"`
	S3   S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// AdvisorConfig selects the LLM used to narrate scan results. Provider is
// "claude", "openai", or empty to disable.
type AdvisorConfig struct {
	Provider string       `mapstructure:"provider"`
	TopRows  int          `mapstructure:"top_rows"`
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// WatchConfig drives the periodic scan loop.
type WatchConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	ListenAddr string        `mapstructure:"listen_addr"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand ${VAR} references so secrets stay out of the file
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Schwab: SchwabConfig{
			RedirectURL: "http://127.0.0.1:8182/callback",
			Timeout:     30 * time.Second,
		},
		Filter: FilterConfig{
			MinPremium:          0.05,
			MinDaysToExpiration: 90,
			StrikeDiscount:      0.50,
		},
		Dividends: DividendsConfig{
			MaxCaptures: 5,
		},
		Data: DataConfig{
			Dir: "data",
		},
		Advisor: AdvisorConfig{
			TopRows: 10,
		},
		Watch: WatchConfig{
			Interval:   15 * time.Minute,
			ListenAddr: "127.0.0.1:8080",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Filter.MinPremium < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_premium cannot be negative, got %f", c.Filter.MinPremium))
	}
	if c.Filter.StrikeDiscount < 0 || c.Filter.StrikeDiscount > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("strike_discount must be between 0 and 1, got %f", c.Filter.StrikeDiscount))
	}
	if c.Dividends.MaxCaptures < 1 || c.Dividends.MaxCaptures > 12 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_captures must be between 1 and 12, got %d", c.Dividends.MaxCaptures))
	}
	if c.Watch.Interval <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("watch interval must be positive, got %s", c.Watch.Interval))
	}

	switch c.Archive.Kind {
	case "", "local", "s3":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive kind must be local or s3, got %q", c.Archive.Kind))
	}
	if c.Archive.Kind == "s3" && c.Archive.S3.Bucket == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("s3 bucket required when archive kind is s3"))
	}

	switch c.Advisor.Provider {
	case "":
	case "claude":
		if c.Advisor.Claude.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("claude api_key required when provider is claude"))
		}
	case "openai":
		if c.Advisor.OpenAI.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("openai api_key required when provider is openai"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("advisor provider must be claude or openai, got %q", c.Advisor.Provider))
	}

	return nil
}

// RequireCredentials checks the fields a live API scan depends on. Replaying
// a snapshot needs no credentials, so this is separate from Validate.
func (c *Config) RequireCredentials() error {
	if c.Schwab.AppKey == "" || c.Schwab.AppSecret == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("schwab app_key and app_secret are required"))
	}
	return nil
}
