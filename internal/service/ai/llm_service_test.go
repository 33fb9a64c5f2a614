package ai

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	reply string
	seen  []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.seen = input
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.seen = input
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage(f.reply, nil)}), nil
}

func (f *fakeChatModel) BindTools(_ []*schema.ToolInfo) error { return nil }

func TestChainGeneratorSendsPromptAsUserTurn(t *testing.T) {
	fake := &fakeChatModel{reply: `{"personas": []}`}
	g, err := newChainGenerator(context.Background(), fake)
	require.NoError(t, err)

	got, err := g.Generate(context.Background(), `Return {"personas": [...]} only`)
	require.NoError(t, err)
	assert.Equal(t, `{"personas": []}`, got)

	require.Len(t, fake.seen, 2)
	assert.Equal(t, schema.System, fake.seen[0].Role)
	assert.Equal(t, schema.User, fake.seen[1].Role)
	assert.Equal(t, `Return {"personas": [...]} only`, fake.seen[1].Content)
}
