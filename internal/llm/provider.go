package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout marks a completion call that exceeded its bounded wait. The
// script builder treats it as fatal (GenerationTimeout) rather than as a
// rejected turn.
var ErrTimeout = errors.New("llm request timed out")

// Provider is the analysis collaborator: an opaque text-generation endpoint.
// Replies are free-form text; callers must tolerate non-conforming output
// and validate downstream instead of trusting it.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Complete sends a prompt and returns the raw model reply.
	Complete(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// Request is one completion call.
type Request struct {
	// System frames the model's role (persona framing, output contract).
	System string

	// Prompt is the user prompt, seeded with paper-specific content.
	Prompt string

	// MaxTokens limits the reply length. Zero means the provider default.
	MaxTokens int

	// Temperature overrides the configured sampling temperature when > 0.
	Temperature float64
}

// Response is the raw model reply plus usage accounting.
type Response struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "ollama" or "openai" (any OpenAI-compatible endpoint).
	Provider string

	// Model name (provider-specific, e.g. "llama3.1:8b").
	Model string

	// BaseURL of the endpoint (e.g. "http://localhost:11434").
	BaseURL string

	// APIKey for OpenAI-compatible endpoints. Unused by Ollama.
	APIKey string

	// Timeout bounds each completion call.
	Timeout time.Duration

	// MaxTokens is the default reply budget.
	MaxTokens int

	// Temperature is the default sampling temperature.
	Temperature float64
}

// NewProvider creates a provider by the configured name.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaProvider(cfg)
	case "openai":
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q: choose ollama or openai", cfg.Provider)
	}
}
