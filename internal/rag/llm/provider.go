package llm

import "context"

// Options bound a single generation call. Zero values mean "provider default".
type Options struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
	Stop        []string
}

type Provider interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}
