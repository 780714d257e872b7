package search

import "github.com/poiesic/noesis/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterEmbedding(embedded bool)
	AfterSemanticSearch(hits []*core.ScoredThought)
	AfterLexicalSearch(hits []*core.ScoredThought)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                              {}
func (n *noopMonitor) AfterEmbedding(_ bool)                       {}
func (n *noopMonitor) AfterSemanticSearch(_ []*core.ScoredThought) {}
func (n *noopMonitor) AfterLexicalSearch(_ []*core.ScoredThought)  {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)               {}
