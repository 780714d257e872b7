package search

import (
	"context"

	"github.com/poiesic/noesis/core"
)

// SearchVector runs the nearest-neighbour query alone. Only thoughts whose
// embedding has the query's length are considered; results are ordered by
// ascending cosine distance, then id.
func (s *Searcher) SearchVector(ctx context.Context, userID string, embedding []float32, filters *core.SearchFilters, limit int) ([]*core.ScoredThought, error) {
	if err := s.checkQuery(userID, filters); err != nil {
		return nil, err
	}
	hits, err := s.thoughts.FindNearest(ctx, userID, embedding, filters, 0, s.limitOrDefault(limit))
	if err != nil {
		s.logger.Error("semantic search failed", "err", err)
		return nil, err
	}
	return hits, nil
}
