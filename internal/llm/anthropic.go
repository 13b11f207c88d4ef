package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/chainguard-dev/clog"
)

// Anthropic generates text with the Claude Messages API.
type Anthropic struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int64
}

// NewAnthropic creates a Claude generator authenticated with s.APIKey.
func NewAnthropic(s Settings) *Anthropic {
	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}
	return &Anthropic{
		client:      anthropic.NewClient(anthropicoption.WithAPIKey(s.APIKey)),
		model:       s.Model,
		temperature: s.Temperature,
		maxTokens:   maxTokens,
	}
}

// Generate sends instructions as the system prompt and directive as the user message.
func (a *Anthropic) Generate(ctx context.Context, instructions, directive string) (string, error) {
	clog.FromContext(ctx).With("model", a.model).Info("calling Claude")

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   a.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: instructions}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(directive))},
		Temperature: anthropic.Float(a.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("claude messages: %w", err)
	}
	return anthropicText(message)
}

// anthropicText joins the text blocks of message, failing if it was cut off.
func anthropicText(message *anthropic.Message) (string, error) {
	if message.StopReason == anthropic.StopReasonMaxTokens {
		return "", fmt.Errorf("claude: %w", ErrTruncated)
	}
	var b strings.Builder
	for _, content := range message.Content {
		if content.Type == "text" {
			b.WriteString(content.Text)
		}
	}
	return b.String(), nil
}
