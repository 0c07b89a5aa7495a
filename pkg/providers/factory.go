package providers

import (
	"fmt"

	"github.com/sipeed/sketchcanvas/pkg/config"
)

// NewProvider creates the provider selected by cfg.Provider.
func NewProvider(cfg *config.Config) (LLMProvider, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic, "":
		return NewClaudeProvider(cfg.AnthropicAPIKey, cfg.AnthropicURL, cfg.Model), nil
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
