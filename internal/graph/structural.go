package graph

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/docgraph/internal/util/sets"
)

// inferStructural adds parent/child edges derived from the directory layout.
//
// Two heuristics run for every node and both may fire:
//   - a hub file named after the node's directory (D/<base D>.<ext>) is the
//     parent of every other file in D;
//   - one level up, the first of <P>/<base P>.<ext>, <P>/index.<ext> and
//     <P>/README.<ext> is a secondary parent with a lower weight.
//
// Nodes with more than maxDepth path segments are skipped.
func inferStructural(nodes []Node, ids sets.Set[string], exts []string, maxDepth int, acc *accumulator) {
	for _, n := range nodes {
		if maxDepth > 0 && strings.Count(n.ID, "/")+1 > maxDepth {
			continue
		}
		dir := path.Dir(n.ID)
		if dir == "." {
			continue
		}

		if hub, ok := firstExisting(ids, hubCandidates(dir, exts)); ok && hub != n.ID {
			acc.add(Edge{Source: hub, Target: n.ID, Kind: EdgeStructural, Weight: WeightDirectoryHub})
		}

		if parent, ok := firstExisting(ids, ancestorCandidates(path.Dir(dir), exts)); ok {
			acc.add(Edge{Source: parent, Target: n.ID, Kind: EdgeStructural, Weight: WeightAncestorHub})
		}
	}
}

// hubCandidates lists D/<base D>.<ext> for every extension, in order.
func hubCandidates(dir string, exts []string) []string {
	base := path.Base(dir)
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		out = append(out, path.Join(dir, base+ext))
	}
	return out
}

// ancestorCandidates lists the conventional parents of directory p in
// priority order: its hub file (unless p is the site root), then index, then
// README.
func ancestorCandidates(p string, exts []string) []string {
	var out []string
	if p != "." {
		out = append(out, hubCandidates(p, exts)...)
	}
	for _, name := range []string{"index", "README"} {
		for _, ext := range exts {
			out = append(out, path.Join(p, name+ext))
		}
	}
	return out
}

func firstExisting(ids sets.Set[string], candidates []string) (string, bool) {
	for _, c := range candidates {
		if ids.Has(c) {
			return c, true
		}
	}
	return "", false
}
