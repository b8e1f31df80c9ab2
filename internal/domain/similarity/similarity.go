// Package similarity produces the semantic-similarity signal the matcher
// consumes as its embedding score. Scores are in [0, 1].
package similarity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/singleflight"
)

// NeutralSimilarity is returned when either descriptor is empty.
const NeutralSimilarity = 0.5

// Provider scores how alike two free-text descriptors are.
type Provider interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// Embedder turns texts into vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ErrDimensionMismatch is returned when two vectors differ in length.
var ErrDimensionMismatch = errors.New("embedding dimensions differ")

// Cosine returns the cosine similarity of two vectors. Zero vectors have
// similarity 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// EmbeddingProvider scores descriptors by the cosine similarity of their
// embeddings. Negative cosines count as 0. Vectors are cached per
// normalized text, and concurrent misses for one text share a single
// embedder call.
type EmbeddingProvider struct {
	embedder Embedder
	cache    *VectorCache
	inflight singleflight.Group
}

// NewEmbeddingProvider creates a provider backed by embedder. cacheEntries
// bounds the vector cache; 0 uses DefaultCacheEntries.
func NewEmbeddingProvider(embedder Embedder, cacheEntries int) *EmbeddingProvider {
	return &EmbeddingProvider{
		embedder: embedder,
		cache:    NewVectorCache(cacheEntries),
	}
}

// Similarity implements Provider.
func (p *EmbeddingProvider) Similarity(ctx context.Context, a, b string) (float64, error) {
	na, nb := NormalizeDescriptor(a), NormalizeDescriptor(b)
	if na == "" || nb == "" {
		return NeutralSimilarity, nil
	}
	if na == nb {
		return 1.0, nil
	}

	vectors, err := p.vectors(ctx, na, nb)
	if err != nil {
		return 0, err
	}

	cos, err := Cosine(vectors[0], vectors[1])
	if err != nil {
		return 0, err
	}
	return math.Max(0, math.Min(1, cos)), nil
}

func (p *EmbeddingProvider) vectors(ctx context.Context, texts ...string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	pending := make(map[int]<-chan singleflight.Result)
	for i, t := range texts {
		if v, ok := p.cache.Get(t); ok {
			out[i] = v
			continue
		}
		pending[i] = p.inflight.DoChan(t, func() (interface{}, error) {
			return p.embed(ctx, t)
		})
	}

	for i, ch := range pending {
		select {
		case res := <-ch:
			if res.Err != nil {
				return nil, res.Err
			}
			out[i] = res.Val.([]float32)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, nil
}

func (p *EmbeddingProvider) embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := p.cache.Get(text); ok {
		return v, nil
	}
	embedded, err := p.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed descriptors: %w", err)
	}
	if len(embedded) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for 1 text", len(embedded))
	}
	p.cache.Set(text, embedded[0])
	return embedded[0], nil
}

// FallbackProvider uses secondary whenever primary fails.
type FallbackProvider struct {
	primary   Provider
	secondary Provider
	logger    *slog.Logger
}

// NewFallbackProvider chains two providers.
func NewFallbackProvider(primary, secondary Provider, logger *slog.Logger) *FallbackProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackProvider{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Similarity implements Provider.
func (f *FallbackProvider) Similarity(ctx context.Context, a, b string) (float64, error) {
	score, err := f.primary.Similarity(ctx, a, b)
	if err == nil {
		return score, nil
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	f.logger.Warn("primary similarity provider failed, using fallback", "error", err)
	return f.secondary.Similarity(ctx, a, b)
}
