package graph

import (
	"git.home.luguber.info/inful/docgraph/internal/util/sets"
)

type edgeKey struct {
	a, b string
	kind EdgeKind
}

// keyFor returns the dedup key of e. Structural edges are keyed by the
// unordered pair; referential edges by the directed pair.
func keyFor(e Edge) edgeKey {
	if e.Kind == EdgeStructural && e.Target < e.Source {
		return edgeKey{a: e.Target, b: e.Source, kind: e.Kind}
	}
	return edgeKey{a: e.Source, b: e.Target, kind: e.Kind}
}

type edgeSet struct {
	keys sets.Set[edgeKey]
}

func newEdgeSet() *edgeSet {
	return &edgeSet{keys: sets.New[edgeKey]()}
}

func (s *edgeSet) add(e Edge) bool {
	return s.keys.Insert(keyFor(e))
}

// accumulator collects the edges of one run in insertion order. It is owned
// by a single goroutine.
type accumulator struct {
	seen  *edgeSet
	edges []Edge
}

func newAccumulator() *accumulator {
	return &accumulator{seen: newEdgeSet()}
}

// add appends e unless it is a self loop or a duplicate under its kind's
// policy. It reports whether e was added.
func (a *accumulator) add(e Edge) bool {
	if e.Source == e.Target {
		return false
	}
	if !a.seen.add(e) {
		return false
	}
	a.edges = append(a.edges, e)
	return true
}

func (a *accumulator) list() []Edge {
	if a.edges == nil {
		return []Edge{}
	}
	return a.edges
}
