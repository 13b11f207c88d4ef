package llm

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
)

// OpenAI generates text with the Chat Completions API.
type OpenAI struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

// NewOpenAI creates an OpenAI generator authenticated with s.APIKey.
func NewOpenAI(s Settings) *OpenAI {
	return &OpenAI{
		client:      openai.NewClient(openaioption.WithAPIKey(s.APIKey)),
		model:       s.Model,
		temperature: s.Temperature,
		maxTokens:   s.MaxTokens,
	}
}

// Generate sends instructions as the system message and directive as the user message.
func (o *OpenAI) Generate(ctx context.Context, instructions, directive string) (string, error) {
	clog.FromContext(ctx).With("model", o.model).Info("calling OpenAI")

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instructions),
			openai.UserMessage(directive),
		},
		Temperature: openai.Float(o.temperature),
	}
	if o.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(o.maxTokens)
	}
	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	return openaiText(completion)
}

// openaiText returns the first choice's content, failing if it was cut off.
func openaiText(completion *openai.ChatCompletion) (string, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	choice := completion.Choices[0]
	if choice.FinishReason == "length" {
		return "", fmt.Errorf("openai: %w", ErrTruncated)
	}
	return choice.Message.Content, nil
}
