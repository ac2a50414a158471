package httpserver

import (
	"sync/atomic"

	"git.home.luguber.info/inful/docgraph/internal/graph"
)

type snapshot struct {
	graph  *graph.Graph
	notice string
}

// GraphState holds the graph being served. Readers never block writers; a
// refresh swaps the whole snapshot.
type GraphState struct {
	current atomic.Pointer[snapshot]
}

// NewGraphState starts with an empty graph and no notice.
func NewGraphState() *GraphState {
	s := &GraphState{}
	s.current.Store(&snapshot{graph: graph.Empty()})
	return s
}

// Set replaces the served graph. A nil graph is stored as an empty one.
func (s *GraphState) Set(g *graph.Graph, notice string) {
	if g == nil {
		g = graph.Empty()
	}
	s.current.Store(&snapshot{graph: g, notice: notice})
}

// Load fills the state through graph.LoadOrEmpty.
func (s *GraphState) Load(load func() (*graph.Graph, error)) {
	s.Set(graph.LoadOrEmpty(load))
}

// Current returns the served graph and its fallback notice, if any.
func (s *GraphState) Current() (*graph.Graph, string) {
	snap := s.current.Load()
	return snap.graph, snap.notice
}
