package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/common"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderGemini uses Google Gemini API
	ProviderGemini ProviderType = "gemini"
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
)

// Provider defines the interface for AI content generation
type Provider interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	GetProviderType() ProviderType
	Close() error
}

// Factory creates and caches AI providers from configuration
type Factory struct {
	claudeConfig *common.ClaudeConfig
	geminiConfig *common.GeminiConfig
	llmConfig    *common.LLMConfig
	logger       arbor.ILogger

	claude Provider
	gemini Provider
}

// NewFactory creates a new provider factory
func NewFactory(claudeConfig *common.ClaudeConfig, geminiConfig *common.GeminiConfig, llmConfig *common.LLMConfig, logger arbor.ILogger) *Factory {
	return &Factory{
		claudeConfig: claudeConfig,
		geminiConfig: geminiConfig,
		llmConfig:    llmConfig,
		logger:       logger,
	}
}

// DetectProvider determines the provider type from a model string.
// Model strings can be:
// - "claude-sonnet-4-20250514" -> Claude
// - "claude/claude-sonnet-4-20250514" -> Claude (with prefix)
// - "gemini-2.0-flash" -> Gemini
// - Empty string -> uses default provider from config
func (f *Factory) DetectProvider(model string) ProviderType {
	if model == "" {
		return ProviderType(f.llmConfig.DefaultProvider)
	}

	model = strings.ToLower(model)

	if strings.HasPrefix(model, "claude/") || strings.HasPrefix(model, "anthropic/") || strings.HasPrefix(model, "claude-") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "gemini/") || strings.HasPrefix(model, "google/") || strings.HasPrefix(model, "gemini-") {
		return ProviderGemini
	}

	return ProviderType(f.llmConfig.DefaultProvider)
}

// Provider returns the provider for the given type, constructing it on
// first use.
func (f *Factory) Provider(ctx context.Context, providerType ProviderType) (Provider, error) {
	switch providerType {
	case ProviderClaude:
		if f.claude == nil {
			svc, err := NewClaudeProvider(f.claudeConfig, f.logger)
			if err != nil {
				return nil, err
			}
			f.claude = svc
		}
		return f.claude, nil
	case ProviderGemini:
		if f.gemini == nil {
			svc, err := NewGeminiProvider(ctx, f.geminiConfig, f.logger)
			if err != nil {
				return nil, err
			}
			f.gemini = svc
		}
		return f.gemini, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s", providerType)
	}
}

// DefaultProvider returns the configured default provider.
func (f *Factory) DefaultProvider(ctx context.Context) (Provider, error) {
	return f.Provider(ctx, ProviderType(f.llmConfig.DefaultProvider))
}

// Close releases all constructed providers.
func (f *Factory) Close() error {
	if f.claude != nil {
		f.claude.Close()
	}
	if f.gemini != nil {
		f.gemini.Close()
	}
	return nil
}
