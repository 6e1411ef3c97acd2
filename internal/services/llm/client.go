package llm

import (
	"context"
	"fmt"

	"github.com/smartninja/priceagent/internal/interfaces"
)

// Client adapts the provider factory to the GenerativeClient interface
// consumed by the analyzers. The provider is resolved lazily so a
// missing API key only surfaces when generation is actually attempted,
// at which point callers fall back to rule-based analysis.
type Client struct {
	factory *Factory
}

// NewClient creates a GenerativeClient backed by the factory's default provider.
func NewClient(factory *Factory) interfaces.GenerativeClient {
	return &Client{factory: factory}
}

// Generate implements interfaces.GenerativeClient.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	provider, err := c.factory.DefaultProvider(ctx)
	if err != nil {
		return "", fmt.Errorf("LLM provider unavailable: %w", err)
	}
	return provider.GenerateContent(ctx, prompt)
}
