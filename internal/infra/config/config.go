// Package config loads runtime configuration from the environment, an
// optional .env file, and an optional YAML overrides file. Configuration is
// always passed explicitly into constructors, never read ambiently.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultProvider  = "openai"
	defaultHTTPAddr  = ":8000"
	defaultOutputDir = "./test_cases"
)

type Config struct {
	OpenAIAPIKey    string
	GeminiAPIKey    string
	AnthropicAPIKey string

	OpenAIModel string
	GeminiModel string
	ClaudeModel string

	DefaultProvider string
	ProviderOrder   []string
	RequestTimeout  time.Duration
	ProviderRPS     float64

	MockMode  bool
	HTTPAddr  string
	OutputDir string
}

// Load reads configuration from the environment, consulting a .env file in
// the working directory when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIModel:     os.Getenv("SMARTCASE_OPENAI_MODEL"),
		GeminiModel:     os.Getenv("SMARTCASE_GEMINI_MODEL"),
		ClaudeModel:     os.Getenv("SMARTCASE_CLAUDE_MODEL"),
		DefaultProvider: envOr("SMARTCASE_DEFAULT_PROVIDER", defaultProvider),
		RequestTimeout:  defaultTimeout,
		HTTPAddr:        envOr("SMARTCASE_HTTP_ADDR", defaultHTTPAddr),
		OutputDir:       envOr("SMARTCASE_OUTPUT_DIR", defaultOutputDir),
		MockMode:        os.Getenv("SMARTCASE_MOCK_MODE") == "true",
	}

	if v := os.Getenv("SMARTCASE_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SMARTCASE_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	if v := os.Getenv("SMARTCASE_PROVIDER_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SMARTCASE_PROVIDER_RPS: %w", err)
		}
		cfg.ProviderRPS = rps
	}

	return cfg, nil
}

// fileOverrides is the YAML overrides file shape.
type fileOverrides struct {
	DefaultProvider string   `yaml:"default_provider"`
	ProviderOrder   []string `yaml:"provider_order"`
	RequestTimeout  string   `yaml:"request_timeout"`
	ProviderRPS     float64  `yaml:"provider_rps"`
	Models          struct {
		OpenAI string `yaml:"openai"`
		Gemini string `yaml:"gemini"`
		Claude string `yaml:"claude"`
	} `yaml:"models"`
}

// ApplyFile layers overrides from a YAML file on top of the loaded config.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var overrides fileOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if overrides.DefaultProvider != "" {
		c.DefaultProvider = overrides.DefaultProvider
	}
	if len(overrides.ProviderOrder) > 0 {
		c.ProviderOrder = overrides.ProviderOrder
	}
	if overrides.RequestTimeout != "" {
		d, err := time.ParseDuration(overrides.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout: %w", err)
		}
		c.RequestTimeout = d
	}
	if overrides.ProviderRPS > 0 {
		c.ProviderRPS = overrides.ProviderRPS
	}
	if overrides.Models.OpenAI != "" {
		c.OpenAIModel = overrides.Models.OpenAI
	}
	if overrides.Models.Gemini != "" {
		c.GeminiModel = overrides.Models.Gemini
	}
	if overrides.Models.Claude != "" {
		c.ClaudeModel = overrides.Models.Claude
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
