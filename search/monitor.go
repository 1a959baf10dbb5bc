package search

import (
	"github.com/poiesic/evidentia/core"
)

// ResolveMonitor provides hooks to observe the resolution process.
// Implement this interface to track intermediate steps during multi-term
// resolution.
type ResolveMonitor interface {
	Start(query string)
	AfterExpansion(terms []string)
	TermSearched(term string, best *core.SupplementMatch)
	EarlyStop(term string, similarity float32)
	Finish(resolution *Resolution)
}

// noopMonitor is a no-op implementation of ResolveMonitor
type noopMonitor struct{}

var _ ResolveMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                {}
func (n *noopMonitor) AfterExpansion(_ []string)                     {}
func (n *noopMonitor) TermSearched(_ string, _ *core.SupplementMatch) {}
func (n *noopMonitor) EarlyStop(_ string, _ float32)                 {}
func (n *noopMonitor) Finish(_ *Resolution)                          {}
