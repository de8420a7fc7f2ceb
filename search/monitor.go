package search

import (
	"github.com/poiesic/firstaid/core"
)

// Monitor provides hooks to observe the retrieval pipeline.
// Implement this interface to track intermediate steps and results during
// a search.
type Monitor interface {
	Start(query string)
	AfterPrimarySearch(ids []uint64)
	AfterExpansionSearch(variant string, ids []uint64)
	AfterKeywordFallback(ids []uint64)
	AfterSecondChance(ids []uint64)
	Finish(results []*core.Candidate)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                           {}
func (n *noopMonitor) AfterPrimarySearch(_ []uint64)            {}
func (n *noopMonitor) AfterExpansionSearch(_ string, _ []uint64) {}
func (n *noopMonitor) AfterKeywordFallback(_ []uint64)          {}
func (n *noopMonitor) AfterSecondChance(_ []uint64)             {}
func (n *noopMonitor) Finish(_ []*core.Candidate)               {}
