package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.home.luguber.info/inful/docgraph/internal/graph"
)

func sampleGraph() *graph.Graph {
	return graph.New(
		[]graph.Node{{ID: "docs/a.md", Title: "A", Path: "/docs/a", Category: graph.CategoryDoc}, {ID: "docs/b.md", Title: "B", Path: "/docs/b", Category: graph.CategoryDoc}},
		[]graph.Edge{{Source: "docs/a.md", Target: "docs/b.md", Kind: graph.EdgeReferential, Weight: graph.WeightReference}},
		time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	)
}

func TestFileStoreSaveWritesEveryPath(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "static", "graph.json"),
		filepath.Join(dir, "build", "nested", "graph.json"),
	}
	store, err := NewFileStore(paths, false)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := store.Save(context.Background(), sampleGraph()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("invalid json in %s: %v", p, err)
		}
		if _, ok := doc["links"]; !ok {
			t.Errorf("%s: missing links key", p)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(paths[0]))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only graph.json, found %d entries (temp file left behind?)", len(entries))
	}
}

func TestFileStoreLoadRoundTrip(t *testing.T) {
	store, err := NewFileStore([]string{filepath.Join(t.TempDir(), "graph.json")}, true)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	want := sampleGraph()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Metadata.TotalLinks != 1 || got.Nodes[1].ID != "docs/b.md" {
		t.Errorf("unexpected graph: %+v", got)
	}
	if !got.Metadata.GeneratedAt.Equal(want.Metadata.GeneratedAt) {
		t.Errorf("generatedAt = %v, want %v", got.Metadata.GeneratedAt, want.Metadata.GeneratedAt)
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	store, _ := NewFileStore([]string{filepath.Join(t.TempDir(), "graph.json")}, false)
	_, err := store.Load(context.Background())
	if !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreLoadCorrupt(t *testing.T) {
	p := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(p, []byte(`{"nodes":[],"links":[],"metadata":{"totalNodes":5}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	store, _ := NewFileStore([]string{p}, false)
	_, err := store.Load(context.Background())
	if !errors.Is(err, graph.ErrInvalidGraph) {
		t.Fatalf("expected ErrInvalidGraph, got %v", err)
	}
}

func TestFileStoreExists(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")
	store, _ := NewFileStore([]string{a, b}, false)
	ctx := context.Background()

	if ok, err := store.Exists(ctx); err != nil || ok {
		t.Fatalf("Exists before save = %v, %v", ok, err)
	}
	if err := store.Save(ctx, sampleGraph()); err != nil {
		t.Fatal(err)
	}
	if ok, err := store.Exists(ctx); err != nil || !ok {
		t.Fatalf("Exists after save = %v, %v", ok, err)
	}
	if err := os.Remove(b); err != nil {
		t.Fatal(err)
	}
	if ok, _ := store.Exists(ctx); ok {
		t.Fatal("Exists should be false when one output is missing")
	}
}

func TestFileStoreSavePartialFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	good := filepath.Join(dir, "ok", "graph.json")
	bad := filepath.Join(blocker, "graph.json")

	store, _ := NewFileStore([]string{bad, good}, false)
	err := store.Save(context.Background(), sampleGraph())
	if err == nil {
		t.Fatal("expected error for path under a regular file")
	}
	if _, statErr := os.Stat(good); statErr != nil {
		t.Errorf("good path should still be written: %v", statErr)
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore(nil, false); err == nil {
		t.Fatal("expected error")
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	if _, err := m.Load(ctx); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := m.Save(ctx, sampleGraph()); err != nil {
		t.Fatal(err)
	}
	g, err := m.Load(ctx)
	if err != nil || len(g.Nodes) != 2 {
		t.Fatalf("Load = %v, %v", g, err)
	}

	m.FailSave = errors.New("disk full")
	if err := m.Save(ctx, sampleGraph()); err == nil {
		t.Fatal("expected injected failure")
	}
	if c := m.Calls(); c.Save != 2 || c.Load != 2 {
		t.Errorf("calls = %+v", c)
	}
}
