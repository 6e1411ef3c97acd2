package interfaces

import "context"

// GenerativeClient is the opaque text-generation collaborator. It may
// return an empty string or an error; retries, if any, are the
// implementation's concern. Callers own fallback behavior.
type GenerativeClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerativeClientFunc adapts a plain function to GenerativeClient.
type GenerativeClientFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements GenerativeClient.
func (f GenerativeClientFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
