// internal/config/config.go
package config

import (
	"strings"

	"github.com/spf13/viper"

	custom_errors "devtrack/internal/errors"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	HTTPAddr       string `mapstructure:"HTTP_ADDR"`
	DBURL          string `mapstructure:"DB_URL"`
	GithubToken    string `mapstructure:"GITHUB_TOKEN"`
	GithubUsername string `mapstructure:"GITHUB_USERNAME"`
	OpenAIAPIKey   string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel    string `mapstructure:"OPENAI_MODEL"`
}

// LoadConfig reads configuration from a .env file and/or environment
// variables. Required fields are validated once here; the core never re-reads
// ambient environment state.
func LoadConfig() (*Config, error) {
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields. Absence is a configuration error, not a
// runtime error, and aborts startup before any network call.
func (c *Config) Validate() error {
	if c.DBURL == "" {
		return &custom_errors.ConfigError{Field: "DB_URL", Reason: "required"}
	}
	if c.GithubUsername == "" {
		return &custom_errors.ConfigError{Field: "GITHUB_USERNAME", Reason: "required"}
	}
	if c.GithubToken == "" {
		return &custom_errors.ConfigError{Field: "GITHUB_TOKEN", Reason: "required"}
	}
	if c.OpenAIAPIKey == "" {
		return &custom_errors.ConfigError{Field: "OPENAI_API_KEY", Reason: "required"}
	}
	return nil
}
