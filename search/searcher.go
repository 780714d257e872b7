package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/noesis/ai"
	"github.com/poiesic/noesis/core"
	"github.com/poiesic/noesis/storage"
	"golang.org/x/sync/errgroup"
)

// DefaultLimit is used when a search asks for zero or fewer results.
const DefaultLimit = 20

// Searcher provides hybrid lexical and semantic search over thoughts.
type Searcher struct {
	thoughts     storage.ThoughtRepository
	embedder     ai.Embedder
	dimensions   int
	defaultLimit int
	logger       *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithDefaultLimit sets the result count used when a caller passes limit <= 0.
func WithDefaultLimit(limit int) Option {
	return func(s *Searcher) error {
		if limit > 0 {
			s.defaultLimit = limit
		}
		return nil
	}
}

// WithEmbeddingDimensions sets the expected query vector length. Zero accepts any.
func WithEmbeddingDimensions(dims int) Option {
	return func(s *Searcher) error {
		if dims >= 0 {
			s.dimensions = dims
		}
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	thoughts storage.ThoughtRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if thoughts == nil {
		return nil, ErrThoughtRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		thoughts:     thoughts,
		embedder:     provider.Embedder(),
		defaultLimit: DefaultLimit,
		logger:       slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// Search finds userID's thoughts matching query.
// Returns up to limit results ranked by fused score.
func (s *Searcher) Search(ctx context.Context, userID, query string, filters *core.SearchFilters, limit int) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, userID, query, filters, limit, nil)
}

// SearchWithMonitor is Search with stage callbacks.
func (s *Searcher) SearchWithMonitor(ctx context.Context, userID, query string, filters *core.SearchFilters, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if err := s.checkQuery(userID, filters); err != nil {
		return nil, err
	}
	limit = s.limitOrDefault(limit)

	monitor.Start(query)

	embedding := ai.Embed(ctx, s.embedder, query, s.dimensions, s.logger)
	monitor.AfterEmbedding(embedding != nil)

	var semantic, lexical []*core.ScoredThought
	g, gctx := errgroup.WithContext(ctx)
	if embedding != nil {
		g.Go(func() error {
			var err error
			semantic, err = s.SearchVector(gctx, userID, embedding, filters, limit)
			return err
		})
	}
	g.Go(func() error {
		var err error
		lexical, err = s.SearchText(gctx, userID, query, filters, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	monitor.AfterSemanticSearch(semantic)
	monitor.AfterLexicalSearch(lexical)

	results := fuse(semantic, lexical, limit)
	monitor.Finish(results)

	s.logger.Debug("search complete", "semantic", len(semantic), "lexical", len(lexical), "results", len(results))
	return results, nil
}

func (s *Searcher) checkQuery(userID string, filters *core.SearchFilters) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserRequired
	}
	return core.ValidateFilters(filters)
}

func (s *Searcher) limitOrDefault(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	return limit
}
