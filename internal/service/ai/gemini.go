package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/zhouzirui/persona-studio/backend/internal/config"
)

// GeminiGenerator calls a Gemini model through the generative-ai-go SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiGenerator opens a Gemini client using the configured key and model.
func NewGeminiGenerator(ctx context.Context, cfg config.AIConfig) (*GeminiGenerator, error) {
	if !cfg.GeminiEnabled() {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.GeminiModel)
	if cfg.Temperature != nil {
		model.SetTemperature(float32(*cfg.Temperature))
	}
	if cfg.TopP != nil {
		model.SetTopP(float32(*cfg.TopP))
	}
	if cfg.MaxTokens != nil {
		model.SetMaxOutputTokens(int32(*cfg.MaxTokens))
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate sends prompt as a single text part.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return responseText(resp)
}

// Close releases the underlying gRPC connection.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no content generated")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("no text in generated content")
	}
	return b.String(), nil
}
