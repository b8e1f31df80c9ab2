package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eshaffer321/inbox-reconcile/internal/adapters/embeddings"
	"github.com/eshaffer321/inbox-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
	"github.com/eshaffer321/inbox-reconcile/internal/domain/similarity"
	"github.com/eshaffer321/inbox-reconcile/internal/infrastructure/config"
	"github.com/eshaffer321/inbox-reconcile/internal/infrastructure/storage"
)

// app holds the wired dependencies of a command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *storage.Storage
	service *reconcile.Service
}

// newApp opens storage (running migrations) and builds the reconcile service.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	m, sim, err := newScoring(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN, storage.WithLogger(logger.With("system", "storage")))
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	svc := reconcile.NewService(store, m, sim, logger.With("system", "reconcile"),
		reconcile.WithWorkers(cfg.Reconcile.Workers))

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		service: svc,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// newScoring builds the matcher and similarity provider from config.
func newScoring(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*matcher.Matcher, similarity.Provider, error) {
	mc, err := cfg.MatcherConfig()
	if err != nil {
		return nil, nil, err
	}

	sim, err := NewSimilarityProvider(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	return matcher.NewMatcher(mc), sim, nil
}

// NewSimilarityProvider creates the descriptor similarity provider named in
// config. Gemini embeddings fall back to lexical scoring when the API fails;
// "none" returns a nil provider so every pair gets the neutral score.
func NewSimilarityProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (similarity.Provider, error) {
	lexical := similarity.NewLexical()

	switch strings.ToLower(cfg.Embeddings.Provider) {
	case "", "lexical":
		return lexical, nil
	case "none":
		return nil, nil
	case "gemini":
		apiKey := cfg.GetAPIKey(cfg.Embeddings.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
		embedder, err := embeddings.NewGeminiEmbedder(ctx, embeddings.GeminiConfig{
			APIKey: apiKey,
			Model:  cfg.Embeddings.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini embedder: %w", err)
		}
		primary := similarity.NewEmbeddingProvider(embedder, cfg.Embeddings.CacheEntries)
		return similarity.NewFallbackProvider(primary, lexical, logger.With("system", "similarity")), nil
	default:
		return nil, fmt.Errorf("unknown embeddings provider %q (want gemini, lexical or none)", cfg.Embeddings.Provider)
	}
}

// newScoringService builds a service for single-pair scoring without storage.
func newScoringService(m *matcher.Matcher, sim similarity.Provider, logger *slog.Logger) *reconcile.Service {
	return reconcile.NewService(nil, m, sim, logger)
}
