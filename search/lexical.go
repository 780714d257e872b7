package search

import (
	"context"

	"github.com/poiesic/noesis/core"
)

// SearchText runs the full-text query alone. Results are ordered by text
// relevance, then id.
func (s *Searcher) SearchText(ctx context.Context, userID, query string, filters *core.SearchFilters, limit int) ([]*core.ScoredThought, error) {
	if err := s.checkQuery(userID, filters); err != nil {
		return nil, err
	}
	hits, err := s.thoughts.SearchText(ctx, userID, query, filters, s.limitOrDefault(limit))
	if err != nil {
		s.logger.Error("lexical search failed", "err", err)
		return nil, err
	}
	return hits, nil
}
