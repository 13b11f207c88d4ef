// Package llm provides text generators backed by hosted language models.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Provider names a hosted model API.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

var (
	// ErrMissingAPIKey is returned when a provider is selected without a credential.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrTruncated is returned when a response stopped at the output token limit.
	ErrTruncated = errors.New("response truncated at the output token limit")
)

// anthropicMaxTokens is used when no limit is configured. The Messages API
// requires one, and the SDK rejects non-streaming requests whose limit implies
// more than ten minutes of generation.
const anthropicMaxTokens = 16384

// Generator produces text from an instruction context and a directive.
type Generator interface {
	Generate(ctx context.Context, instructions, directive string) (string, error)
}

// Settings selects and configures a provider.
type Settings struct {
	Provider    Provider
	Model       string
	APIKey      string
	Temperature float64
	// MaxTokens caps the response length. Zero leaves it to the provider.
	MaxTokens int64
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderAnthropic:
		return "claude-sonnet-4-5"
	case ProviderOpenAI:
		return "gpt-4o"
	default:
		return "gemini-flash-latest"
	}
}

// New returns the Generator for s.Provider.
func New(ctx context.Context, s Settings) (Generator, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("%w for provider %q", ErrMissingAPIKey, s.Provider)
	}
	if s.Model == "" {
		s.Model = DefaultModel(s.Provider)
	}

	switch s.Provider {
	case ProviderGemini, "":
		return NewGemini(ctx, s)
	case ProviderAnthropic:
		return NewAnthropic(s), nil
	case ProviderOpenAI:
		return NewOpenAI(s), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", s.Provider)
	}
}
