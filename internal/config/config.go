package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	APIBaseURL        string `mapstructure:"API_BASE_URL"`
	APITimeoutSeconds int    `mapstructure:"API_TIMEOUT_SECONDS"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	StateDir          string `mapstructure:"STATE_DIR"`
	SandboxPort       string `mapstructure:"SANDBOX_PORT"`
	DefaultPageLimit  int    `mapstructure:"DEFAULT_PAGE_LIMIT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("API_BASE_URL", "http://localhost:4000/api/v1")
	v.SetDefault("API_TIMEOUT_SECONDS", 10)
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STATE_DIR", defaultStateDir())
	v.SetDefault("SANDBOX_PORT", "4000")
	v.SetDefault("DEFAULT_PAGE_LIMIT", 10)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("API_BASE_URL")
	v.BindEnv("API_TIMEOUT_SECONDS")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("STATE_DIR")
	v.BindEnv("SANDBOX_PORT")
	v.BindEnv("DEFAULT_PAGE_LIMIT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	if cfg.APITimeoutSeconds <= 0 {
		cfg.APITimeoutSeconds = 10
	}
	if cfg.DefaultPageLimit <= 0 {
		cfg.DefaultPageLimit = 10
	}

	return cfg, nil
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clinicdesk"
	}
	return filepath.Join(home, ".clinicdesk")
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// APITimeout returns the request timeout as a duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSeconds) * time.Second
}
