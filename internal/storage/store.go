// Package storage persists generated graphs for later consumption.
package storage

import (
	"context"
	"errors"

	"git.home.luguber.info/inful/docgraph/internal/graph"
)

// GraphStore saves and loads the most recently generated graph.
type GraphStore interface {
	// Save persists g, replacing any previous graph.
	Save(ctx context.Context, g *graph.Graph) error

	// Load returns the last saved graph. It returns an ErrNotFound when
	// nothing has been saved yet.
	Load(ctx context.Context) (*graph.Graph, error)

	// Exists reports whether every location Save writes to is present.
	Exists(ctx context.Context) (bool, error)
}

// ErrNotFound is returned when no graph has been stored at Location.
type ErrNotFound struct {
	Location string
}

func (e ErrNotFound) Error() string {
	return "graph not found: " + e.Location
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}
