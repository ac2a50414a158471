package graph

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/docgraph/internal/util/sets"
)

// ErrInvalidGraph is wrapped by every Validate failure.
var ErrInvalidGraph = errors.New("invalid graph")

// Validate checks the structural guarantees every generated graph holds:
// consistent counts, unique node ids, edges between known nodes, no self
// loops, no repeated (source, target, kind) triple and at most one
// structural edge per unordered pair.
func (g *Graph) Validate() error {
	if g.Metadata.TotalNodes != len(g.Nodes) {
		return fmt.Errorf("%w: totalNodes %d but %d nodes", ErrInvalidGraph, g.Metadata.TotalNodes, len(g.Nodes))
	}
	if g.Metadata.TotalLinks != len(g.Links) {
		return fmt.Errorf("%w: totalLinks %d but %d links", ErrInvalidGraph, g.Metadata.TotalLinks, len(g.Links))
	}

	ids := sets.New[string]()
	for _, n := range g.Nodes {
		if !ids.Insert(n.ID) {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidGraph, n.ID)
		}
	}

	edges := newEdgeSet()
	for _, e := range g.Links {
		if e.Source == e.Target {
			return fmt.Errorf("%w: self loop on %q", ErrInvalidGraph, e.Source)
		}
		if !ids.Has(e.Source) || !ids.Has(e.Target) {
			return fmt.Errorf("%w: edge %s -> %s references unknown node", ErrInvalidGraph, e.Source, e.Target)
		}
		if !edges.add(e) {
			return fmt.Errorf("%w: duplicate %s edge %s -> %s", ErrInvalidGraph, e.Kind, e.Source, e.Target)
		}
	}
	return nil
}
