package graph

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// schemePrefix matches absolute URIs (https:, mailto:, tel:, ...).
var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*:`)

// resolver maps link targets found in a node body onto node ids. Lookups are
// keyed on NFC-normalized strings so that composed and decomposed spellings
// of the same file name resolve alike.
type resolver struct {
	exts   []string
	byID   map[string]string
	byPath map[string]string
	// paths keeps discovery order for suffix matching.
	paths []pathEntry
}

type pathEntry struct {
	path string
	id   string
}

func newResolver(nodes []Node, exts []string) *resolver {
	r := &resolver{
		exts:   exts,
		byID:   make(map[string]string, len(nodes)),
		byPath: make(map[string]string, len(nodes)),
		paths:  make([]pathEntry, 0, len(nodes)),
	}
	for _, n := range nodes {
		r.byID[nfc(n.ID)] = n.ID
		p := nfc(n.Path)
		if _, taken := r.byPath[p]; !taken {
			r.byPath[p] = n.ID
		}
		r.paths = append(r.paths, pathEntry{path: p, id: n.ID})
	}
	return r
}

// target extracts the resolvable part of a link destination. ok is false for
// external URIs and same-page anchors.
func target(dest string) (string, bool) {
	t := strings.TrimSpace(dest)
	t = strings.TrimPrefix(strings.TrimSuffix(t, ">"), "<")
	if t == "" || strings.HasPrefix(t, "//") || schemePrefix.MatchString(t) {
		return "", false
	}
	if i := strings.IndexAny(t, "#?"); i >= 0 {
		t = t[:i]
	}
	if t == "" {
		return "", false
	}
	if unescaped, err := url.PathUnescape(t); err == nil {
		t = unescaped
	}
	return t, true
}

// resolve returns the id that dest, written in source, points at.
func (r *resolver) resolve(source, dest string) (string, bool) {
	t, ok := target(dest)
	if !ok {
		return "", false
	}

	var rel string
	if strings.HasPrefix(t, "/") {
		rel = strings.TrimPrefix(path.Clean(t), "/")
	} else {
		rel = path.Join(path.Dir(source), t)
	}
	if rel == "" {
		rel = "."
	}

	if rel != ".." && !strings.HasPrefix(rel, "../") {
		if id, ok := r.byFile(rel); ok {
			return id, true
		}
	}
	return r.byURL(t, rel)
}

// byFile tries rel as an id, with each extension, and as a directory holding
// an index file.
func (r *resolver) byFile(rel string) (string, bool) {
	candidates := make([]string, 0, 1+2*len(r.exts))
	if rel != "." {
		candidates = append(candidates, rel)
		for _, ext := range r.exts {
			candidates = append(candidates, rel+ext)
		}
	}
	for _, ext := range r.exts {
		candidates = append(candidates, path.Join(rel, "index"+ext))
	}
	for _, c := range candidates {
		if id, ok := r.byID[nfc(c)]; ok {
			return id, true
		}
	}
	return "", false
}

// byURL matches against node URL paths: the target as written, with a
// leading slash, the target resolved against the source directory, and
// finally any path ending in the target on a segment boundary.
func (r *resolver) byURL(t, rel string) (string, bool) {
	u := t
	if u != "/" {
		u = strings.TrimSuffix(u, "/")
	}
	forms := []string{u}
	if !strings.HasPrefix(u, "/") {
		forms = append(forms, "/"+u)
	}
	switch {
	case rel == ".":
		forms = append(forms, "/")
	case rel != ".." && !strings.HasPrefix(rel, "../"):
		forms = append(forms, "/"+rel)
	}
	for _, f := range forms {
		if id, ok := r.byPath[nfc(f)]; ok {
			return id, true
		}
	}

	suffix := strings.TrimPrefix(path.Clean(u), "/")
	if suffix == "." || suffix == "" || suffix == ".." || strings.HasPrefix(suffix, "../") {
		return "", false
	}
	suffix = "/" + nfc(suffix)
	for _, e := range r.paths {
		if strings.HasSuffix(e.path, suffix) {
			return e.id, true
		}
	}
	return "", false
}

func nfc(s string) string {
	return norm.NFC.String(s)
}

// UnresolvedLink is a local link target that matched no node.
type UnresolvedLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// inferReferences adds one directed edge per distinct source -> target link.
// It returns the local targets that resolved to nothing.
func inferReferences(nodes []Node, links map[string][]string, exts []string, acc *accumulator) []UnresolvedLink {
	r := newResolver(nodes, exts)
	var unresolved []UnresolvedLink
	for _, n := range nodes {
		for _, dest := range links[n.ID] {
			if _, local := target(dest); !local {
				continue
			}
			id, ok := r.resolve(n.ID, dest)
			if !ok {
				unresolved = append(unresolved, UnresolvedLink{Source: n.ID, Target: dest})
				continue
			}
			if id == n.ID {
				continue
			}
			acc.add(Edge{Source: n.ID, Target: id, Kind: EdgeReferential, Weight: WeightReference})
		}
	}
	return unresolved
}
