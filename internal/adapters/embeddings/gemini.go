// Package embeddings adapts external embedding services to similarity.Embedder.
package embeddings

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "text-embedding-004"

// contentEmbedder is the subset of *genai.Models the embedder uses.
type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GeminiEmbedder embeds descriptors with the Gemini API.
type GeminiEmbedder struct {
	models contentEmbedder
	model  string
}

// GeminiConfig configures a GeminiEmbedder.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// NewGeminiEmbedder creates a Gemini-backed embedder.
func NewGeminiEmbedder(ctx context.Context, cfg GeminiConfig) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGeminiEmbedder(client.Models, cfg.Model), nil
}

func newGeminiEmbedder(models contentEmbedder, model string) *GeminiEmbedder {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiEmbedder{
		models: models,
		model:  model,
	}
}

// Embed implements similarity.Embedder. One content is sent per text so
// the response carries one embedding per input, in order.
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{
			Role:  "user",
			Parts: []*genai.Part{{Text: text}},
		})
	}

	resp, err := e.models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("embed content: expected %d embeddings, got %d", len(texts), got)
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			return nil, fmt.Errorf("embed content: empty embedding at index %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}
