package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/pdfrag/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	a1, err := m.EmbedText(ctx, "alpha")
	require.NoError(t, err)
	a2, err := m.EmbedText(ctx, "alpha")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "beta")
	require.NoError(t, err)

	assert.Len(t, a1, DefaultDimensions)
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
	assert.Equal(t, 3, m.CallCount())
}

func TestMockEmbedder_EmbedTextsMatchesEmbedText(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	batch, err := m.EmbedTexts(ctx, []string{"one", "two"})
	require.NoError(t, err)
	single, err := m.EmbedText(ctx, "two")
	require.NoError(t, err)

	assert.Equal(t, single, batch[1])
	assert.Equal(t, []string{"one", "two", "two"}, m.Texts())
}

func TestMockEmbedder_InjectedBehaviorAndReset(t *testing.T) {
	m := NewMockEmbedder()
	m.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("boom")
	}

	_, err := m.EmbedTexts(context.Background(), []string{"x"})
	require.Error(t, err)

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	assert.Empty(t, m.Texts())

	_, err = m.EmbedTexts(context.Background(), []string{"x"})
	require.NoError(t, err)
}

func TestMockChatModel(t *testing.T) {
	ctx := context.Background()
	m := NewMockChatModel()

	answer, err := m.Complete(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, DefaultAnswer, answer)

	m.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return "echo: " + prompt, nil
	}
	answer, err = m.Complete(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, "echo: second", answer)

	assert.Equal(t, 2, m.CallCount())
	assert.Equal(t, "second", m.LastPrompt())
	assert.Equal(t, []string{"first", "second"}, m.Prompts())

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	assert.Equal(t, "", m.LastPrompt())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	assert.Equal(t, ai.ProviderOpenAI, p.Kind())
	assert.NotNil(t, p.Embedder())
	assert.NotNil(t, p.ChatModel())

	mp := p.(*MockProvider)
	assert.Same(t, mp.GetMockEmbedder(), p.Embedder())
	assert.Same(t, mp.GetMockChatModel(), p.ChatModel())

	require.NoError(t, p.Close())
	assert.True(t, mp.Closed())

	custom := NewMockProviderWithServices(ai.ProviderGoogle, NewMockEmbedder(), NewMockChatModel())
	assert.Equal(t, ai.ProviderGoogle, custom.Kind())
}
