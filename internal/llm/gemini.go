package llm

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"
)

// Gemini generates text with the Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

// NewGemini creates a Gemini generator authenticated with s.APIKey.
func NewGemini(ctx context.Context, s Settings) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Google AI client: %w", err)
	}
	return &Gemini{
		client:      client,
		model:       s.Model,
		temperature: float32(s.Temperature),
		maxTokens:   int32(s.MaxTokens),
	}, nil
}

// Generate sends instructions as the system instruction and directive as the user turn.
func (g *Gemini) Generate(ctx context.Context, instructions, directive string) (string, error) {
	clog.FromContext(ctx).With("model", g.model).Info("calling Gemini")

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instructions, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		MaxOutputTokens:   g.maxTokens,
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(directive), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return geminiText(resp)
}

// geminiText returns the text of the first candidate, failing if it was cut off.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return "", fmt.Errorf("gemini: %w", ErrTruncated)
	}
	return resp.Text(), nil
}
