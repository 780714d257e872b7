package search

import (
	"cmp"
	"slices"

	"github.com/poiesic/noesis/core"
)

// rrfK damps the contribution of top ranks in Reciprocal Rank Fusion.
const rrfK = 60

// fuse merges the semantic and lexical rankings. Equal scores are ordered
// by thought id so results are stable.
func fuse(semantic, lexical []*core.ScoredThought, limit int) []*core.SearchResult {
	byID := make(map[core.ID]*core.SearchResult, len(semantic)+len(lexical))
	merged := make([]*core.SearchResult, 0, len(semantic)+len(lexical))

	entry := func(t *core.Thought) *core.SearchResult {
		if r, ok := byID[t.ID]; ok {
			return r
		}
		r := &core.SearchResult{Thought: t}
		byID[t.ID] = r
		merged = append(merged, r)
		return r
	}

	for i, hit := range semantic {
		r := entry(hit.Thought)
		r.SemanticRank = i + 1
		r.Score += 1.0 / float64(rrfK+i+1)
	}
	for i, hit := range lexical {
		r := entry(hit.Thought)
		r.TextRank = i + 1
		r.Score += 1.0 / float64(rrfK+i+1)
	}

	slices.SortFunc(merged, func(a, b *core.SearchResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Thought.ID, b.Thought.ID)
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
