package graph

import (
	"strings"

	"git.home.luguber.info/inful/docgraph/internal/util/sets"
)

// Local returns the neighborhood of the node at current: that node, every
// node sharing an edge with it in either direction, and only the edges among
// those nodes. current is a URL path (trailing slash, query and fragment
// ignored) or a node id. When nothing matches the result is empty.
func Local(g *Graph, current string) *Graph {
	if g == nil {
		return Empty()
	}
	center, ok := findCurrent(g, current)
	if !ok {
		return New(nil, nil, g.Metadata.GeneratedAt)
	}

	keep := sets.New(center)
	for _, e := range g.Links {
		switch center {
		case e.Source:
			keep.Add(e.Target)
		case e.Target:
			keep.Add(e.Source)
		}
	}

	nodes := make([]Node, 0, keep.Len())
	for _, n := range g.Nodes {
		if keep.Has(n.ID) {
			nodes = append(nodes, n)
		}
	}
	links := make([]Edge, 0)
	for _, e := range g.Links {
		if keep.Has(e.Source) && keep.Has(e.Target) {
			links = append(links, e)
		}
	}

	out := New(nodes, links, g.Metadata.GeneratedAt)
	out.Metadata.SourceFingerprint = g.Metadata.SourceFingerprint
	out.Metadata.SourceRevision = g.Metadata.SourceRevision
	return out
}

func findCurrent(g *Graph, current string) (string, bool) {
	current = strings.TrimSpace(current)
	if i := strings.IndexAny(current, "#?"); i >= 0 {
		current = current[:i]
	}
	if current == "" {
		return "", false
	}
	p := current
	if p != "/" {
		p = strings.TrimSuffix(p, "/")
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	for _, n := range g.Nodes {
		if n.Path == p {
			return n.ID, true
		}
	}
	for _, n := range g.Nodes {
		if n.ID == current {
			return n.ID, true
		}
	}
	return "", false
}
