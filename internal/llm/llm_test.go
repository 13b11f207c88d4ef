package llm

import (
	"context"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewRequiresAPIKey(t *testing.T) {
	for _, p := range []Provider{ProviderGemini, ProviderAnthropic, ProviderOpenAI} {
		_, err := New(context.Background(), Settings{Provider: p})
		require.ErrorIs(t, err, ErrMissingAPIKey, "provider %s", p)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Settings{Provider: "mistral", APIKey: "k"})
	require.ErrorContains(t, err, `unknown provider "mistral"`)
}

func TestNewSelectsProvider(t *testing.T) {
	gen, err := New(context.Background(), Settings{Provider: ProviderAnthropic, APIKey: "k"})
	require.NoError(t, err)
	a, ok := gen.(*Anthropic)
	require.True(t, ok, "got %T", gen)
	require.Equal(t, DefaultModel(ProviderAnthropic), a.model)
	require.EqualValues(t, anthropicMaxTokens, a.maxTokens)

	gen, err = New(context.Background(), Settings{Provider: ProviderOpenAI, APIKey: "k", Model: "gpt-4.1"})
	require.NoError(t, err)
	o, ok := gen.(*OpenAI)
	require.True(t, ok, "got %T", gen)
	require.Equal(t, "gpt-4.1", o.model)
	require.Zero(t, o.maxTokens, "no limit unless configured")
}

func TestDefaultModel(t *testing.T) {
	require.Equal(t, "gemini-flash-latest", DefaultModel(ProviderGemini))
	require.Equal(t, "gemini-flash-latest", DefaultModel(""))
}

func TestGeminiText(t *testing.T) {
	candidate := func(reason genai.FinishReason) *genai.GenerateContentResponse {
		return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText("# Title\nbody", genai.RoleModel),
			FinishReason: reason,
		}}}
	}

	got, err := geminiText(candidate(genai.FinishReasonStop))
	require.NoError(t, err)
	require.Equal(t, "# Title\nbody", got)

	_, err = geminiText(candidate(genai.FinishReasonMaxTokens))
	require.ErrorIs(t, err, ErrTruncated)

	_, err = geminiText(&genai.GenerateContentResponse{})
	require.ErrorContains(t, err, "no candidates")
}

func TestAnthropicText(t *testing.T) {
	message := func(reason anthropic.StopReason) *anthropic.Message {
		return &anthropic.Message{
			StopReason: reason,
			Content: []anthropic.ContentBlockUnion{
				{Type: "text", Text: "# Title\n"},
				{Type: "text", Text: "body"},
			},
		}
	}

	got, err := anthropicText(message(anthropic.StopReasonEndTurn))
	require.NoError(t, err)
	require.Equal(t, "# Title\nbody", got)

	_, err = anthropicText(message(anthropic.StopReasonMaxTokens))
	require.ErrorIs(t, err, ErrTruncated)
}

func TestOpenAIText(t *testing.T) {
	completion := func(reason string) *openai.ChatCompletion {
		return &openai.ChatCompletion{Choices: []openai.ChatCompletionChoice{{
			FinishReason: reason,
			Message:      openai.ChatCompletionMessage{Content: "# Title\nbody"},
		}}}
	}

	got, err := openaiText(completion("stop"))
	require.NoError(t, err)
	require.Equal(t, "# Title\nbody", got)

	_, err = openaiText(completion("length"))
	require.ErrorIs(t, err, ErrTruncated)

	_, err = openaiText(&openai.ChatCompletion{})
	require.ErrorContains(t, err, "no choices")
}
