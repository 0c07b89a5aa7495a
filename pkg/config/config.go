package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

type Config struct {
	Provider        string `env:"SKETCH_PROVIDER" envDefault:"anthropic"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicURL    string `env:"ANTHROPIC_BASE_URL"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIURL       string `env:"OPENAI_BASE_URL"`
	Model           string `env:"SKETCH_MODEL"`
	MaxTokens       int64  `env:"SKETCH_MAX_TOKENS" envDefault:"2048"`

	VaultDir      string `env:"OBSIDIAN_VAULT"`
	ListenAddr    string `env:"SKETCH_LISTEN_ADDR" envDefault:":3000"`
	InboxDir      string `env:"SKETCH_INBOX_DIR"`
	InboxSchedule string `env:"SKETCH_INBOX_SCHEDULE" envDefault:"*/5 * * * *"`
	MetricsDir    string `env:"SKETCH_METRICS_DIR"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the provider selection and its credentials.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for provider %q", c.Provider)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.Provider)
		}
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("SKETCH_MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	return nil
}

// MetricsWorkspace is where usage metrics are written: MetricsDir when set,
// otherwise the vault.
func (c *Config) MetricsWorkspace() string {
	if c.MetricsDir != "" {
		return c.MetricsDir
	}
	return c.VaultDir
}
