// Package config loads settings from .env, an optional YAML file, and
// environment overrides. API keys never come from the YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LLM configures the model provider and sampling parameters.
type LLM struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`
}

// Agent bounds the reason-act loop.
type Agent struct {
	MaxIterations int `yaml:"max_iterations"`
	TokenBudget   int `yaml:"token_budget"`
}

// HTTP configures outbound market-data requests.
type HTTP struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
	UserAgent      string `yaml:"user_agent"`
}

// Keys holds API keys, sourced from the environment only.
type Keys struct {
	OpenAI       string
	Anthropic    string
	AlphaVantage string
}

// Config is the resolved application configuration.
type Config struct {
	LLM   LLM   `yaml:"llm"`
	Agent Agent `yaml:"agent"`
	HTTP  HTTP  `yaml:"http"`
	Keys  Keys  `yaml:"-"`
}

// Default returns the built-in configuration used when no YAML file exists.
func Default() *Config {
	return &Config{
		LLM: LLM{
			Provider:    "openai",
			Model:       "",
			Temperature: 0.2,
			MaxTokens:   1024,
		},
		Agent: Agent{
			MaxIterations: 12,
			TokenBudget:   24000,
		},
		HTTP: HTTP{
			TimeoutSeconds: 30,
			MaxRetries:     3,
			UserAgent:      "agent-finie/1.0 (finance research agent)",
		},
	}
}

// Load resolves the configuration: .env first (missing file ignored), then
// the YAML file at path (missing file falls back to defaults), then
// environment overrides last.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults apply
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	cfg.Keys = Keys{
		OpenAI:       os.Getenv("OPENAI_API_KEY"),
		Anthropic:    os.Getenv("ANTHROPIC_API_KEY"),
		AlphaVantage: os.Getenv("ALPHA_VANTAGE_API_KEY"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Timeout returns the HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FINIE_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("FINIE_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("FINIE_TOKEN_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Agent.TokenBudget = n
		}
	}
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("config: unknown provider %q (want openai or anthropic)", c.LLM.Provider)
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("config: agent.max_iterations must be positive, got %d", c.Agent.MaxIterations)
	}
	if c.Agent.TokenBudget <= 0 {
		return fmt.Errorf("config: agent.token_budget must be positive, got %d", c.Agent.TokenBudget)
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: http.timeout_seconds must be positive, got %d", c.HTTP.TimeoutSeconds)
	}
	return nil
}
