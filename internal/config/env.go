package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds settings read from the environment.
type EnvConfig struct {
	APIKey       string `env:"QUIZDRILL_API_KEY"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	GroqAPIKey   string `env:"GROQ_API_KEY"`
	DBPath       string `env:"QUIZDRILL_DB"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv reads EnvConfig from the process environment.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := ParseEnv(&cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// APIKeyFor returns the key for a judge provider. QUIZDRILL_API_KEY wins.
func (c EnvConfig) APIKeyFor(provider string) string {
	if c.APIKey != "" {
		return c.APIKey
	}
	switch provider {
	case "groq":
		return c.GroqAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

// DBPathOr returns the configured database path or fallback.
func (c EnvConfig) DBPathOr(fallback string) string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return fallback
}
