package llm

import (
	"context"
	"fmt"

	"github.com/healthlang/ilera/config"
	"github.com/healthlang/ilera/schema"
)

// Request is one generation call.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Provider is one generation backend. The gateway walks an ordered
// list of these.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (schema.ModelResult, error)
}

// NewProvider creates a generation provider from configuration. All
// supported backends speak the OpenAI chat completions protocol; they
// differ only in base URL and credentials.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "groq", "openai", "gemini":
		return newOpenAICompatProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
