package storage

import (
	"context"
	"sync"

	"git.home.luguber.info/inful/docgraph/internal/graph"
)

// MemoryStore keeps the graph in memory. It backs tests and `serve` runs
// without configured outputs.
type MemoryStore struct {
	mu    sync.RWMutex
	g     *graph.Graph
	calls MemoryCalls
	// FailSave, when set, is returned by Save.
	FailSave error
}

// MemoryCalls tracks method invocations for test verification.
type MemoryCalls struct {
	Save int
	Load int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, g *graph.Graph) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Save++
	if m.FailSave != nil {
		return m.FailSave
	}
	m.g = g
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (*graph.Graph, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Load++
	if m.g == nil {
		return nil, ErrNotFound{Location: "memory"}
	}
	return m.g, nil
}

func (m *MemoryStore) Exists(_ context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.g != nil, nil
}

// Calls returns a snapshot of the invocation counters.
func (m *MemoryStore) Calls() MemoryCalls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

var (
	_ GraphStore = (*FileStore)(nil)
	_ GraphStore = (*MemoryStore)(nil)
)
