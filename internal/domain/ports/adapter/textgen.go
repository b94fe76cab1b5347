package adapter

import "context"

// GenerateOptions tune a single generation call.
type GenerateOptions struct {
	// Temperature of 0 requests deterministic output. The relay still treats
	// every structural field in the reply as untrusted.
	Temperature float32
	// JSONOnly hints the provider that the reply must be a JSON object.
	JSONOnly bool
	// MaxTokens caps the completion length; 0 means provider default.
	MaxTokens int
}

// TextGenerator is the port for the external generative-language service.
// One prompt in, raw text out. Implementations make a single attempt and
// must not mutate any relay state.
type TextGenerator interface {
	// Generate returns the raw model reply, or a *domain.GatewayError on
	// transport failure or non-success status.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// CountTokens returns a best-effort prompt token count, for metrics.
	CountTokens(prompt string) (int, error)

	// Name identifies the provider in logs and metrics.
	Name() string
}
