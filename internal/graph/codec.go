package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"git.home.luguber.info/inful/docgraph/internal/logfields"
)

// Encode writes g as JSON.
func Encode(w io.Writer, g *Graph, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(g)
}

// Decode reads a graph written by Encode and validates it.
func Decode(r io.Reader) (*Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Links == nil {
		g.Links = []Edge{}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Notice is shown to users when a previously generated graph is unavailable.
const Notice = "content graph unavailable; showing an empty graph"

// LoadOrEmpty runs load and falls back to an empty graph when it fails. The
// failure is logged; the returned notice is empty on success and Notice
// otherwise.
func LoadOrEmpty(load func() (*Graph, error)) (*Graph, string) {
	g, err := load()
	if err == nil && g != nil {
		return g, ""
	}
	if err == nil {
		err = fmt.Errorf("%w: no graph", ErrInvalidGraph)
	}
	slog.Warn("Falling back to empty graph", logfields.Error(err))
	return Empty(), Notice
}
