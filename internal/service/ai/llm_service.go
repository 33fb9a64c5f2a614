package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/persona-studio/backend/internal/config"
)

const systemPrompt = "You are an assistant inside a marketing persona studio. " +
	"Follow the output instructions in the request exactly and never add commentary around requested JSON."

// ArkGenerator runs prompts through an eino chain backed by an Ark chat model.
type ArkGenerator struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewArkGenerator creates the Ark chat model from cfg and compiles the chain.
func NewArkGenerator(ctx context.Context, cfg config.AIConfig) (*ArkGenerator, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return newChainGenerator(ctx, chatModel)
}

func newChainGenerator(ctx context.Context, chatModel model.ChatModel) (*ArkGenerator, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ArkGenerator{chain: runnable}, nil
}

// Generate sends prompt as the user turn and returns the model's content.
func (g *ArkGenerator) Generate(ctx context.Context, query string) (string, error) {
	response, err := g.chain.Invoke(ctx, map[string]any{
		"system": systemPrompt,
		"query":  query,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	return response.Content, nil
}

// Close is a no-op; the Ark client holds no long-lived connections.
func (g *ArkGenerator) Close() error { return nil }
