package embeddings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type mockModels struct {
	mock.Mock
}

func (m *mockModels) EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	args := m.Called(ctx, model, contents, config)
	if v := args.Get(0); v != nil {
		return v.(*genai.EmbedContentResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestGeminiEmbedder_Embed(t *testing.T) {
	ctx := context.Background()

	t.Run("one vector per text", func(t *testing.T) {
		models := &mockModels{}
		models.On("EmbedContent", ctx, DefaultGeminiModel, mock.MatchedBy(func(c []*genai.Content) bool {
			return len(c) == 2 && c[0].Parts[0].Text == "spotify" && c[1].Parts[0].Text == "netflix"
		}), (*genai.EmbedContentConfig)(nil)).Return(&genai.EmbedContentResponse{
			Embeddings: []*genai.ContentEmbedding{
				{Values: []float32{1, 0}},
				{Values: []float32{0, 1}},
			},
		}, nil)
		e := newGeminiEmbedder(models, "")

		vectors, err := e.Embed(ctx, []string{"spotify", "netflix"})

		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vectors)
		models.AssertExpectations(t)
	})

	t.Run("uses configured model", func(t *testing.T) {
		models := &mockModels{}
		models.On("EmbedContent", ctx, "custom-model", mock.Anything, mock.Anything).Return(&genai.EmbedContentResponse{
			Embeddings: []*genai.ContentEmbedding{{Values: []float32{1}}},
		}, nil)
		e := newGeminiEmbedder(models, "custom-model")

		_, err := e.Embed(ctx, []string{"x"})

		require.NoError(t, err)
		models.AssertExpectations(t)
	})

	t.Run("no texts", func(t *testing.T) {
		e := newGeminiEmbedder(&mockModels{}, "")

		vectors, err := e.Embed(ctx, nil)

		require.NoError(t, err)
		assert.Nil(t, vectors)
	})

	t.Run("api error", func(t *testing.T) {
		models := &mockModels{}
		models.On("EmbedContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("permission denied"))
		e := newGeminiEmbedder(models, "")

		_, err := e.Embed(ctx, []string{"x"})

		assert.ErrorContains(t, err, "permission denied")
	})

	t.Run("count mismatch", func(t *testing.T) {
		models := &mockModels{}
		models.On("EmbedContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&genai.EmbedContentResponse{}, nil)
		e := newGeminiEmbedder(models, "")

		_, err := e.Embed(ctx, []string{"x", "y"})

		assert.ErrorContains(t, err, "expected 2 embeddings, got 0")
	})
}

func TestNewGeminiEmbedder_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiEmbedder(context.Background(), GeminiConfig{})
	assert.Error(t, err)
}
