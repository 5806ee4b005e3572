package search

import "github.com/poiesic/pdfrag/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, limit int)
	AfterQueryEmbedding(dimensions int)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)         {}
func (n *noopMonitor) AfterQueryEmbedding(_ int)     {}
func (n *noopMonitor) Finish(_ []*core.SearchResult) {}
