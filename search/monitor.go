package search

import (
	"github.com/poiesic/spansearch/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(req *Request)
	AfterSegmentation(units []core.Unit)
	AfterWindowing(spans []core.Span)
	AfterIndex(address core.Address, cacheHit bool)
	AfterRetrieval(scored []core.ScoredSpan)
	AfterAggregation(stats map[int]core.UnitStatistics)
	Finish(resp *Response)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *Request)                               {}
func (n *noopMonitor) AfterSegmentation(_ []core.Unit)                {}
func (n *noopMonitor) AfterWindowing(_ []core.Span)                   {}
func (n *noopMonitor) AfterIndex(_ core.Address, _ bool)              {}
func (n *noopMonitor) AfterRetrieval(_ []core.ScoredSpan)             {}
func (n *noopMonitor) AfterAggregation(_ map[int]core.UnitStatistics) {}
func (n *noopMonitor) Finish(_ *Response)                             {}
