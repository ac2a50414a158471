package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"git.home.luguber.info/inful/docgraph/internal/graph"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
)

// FileStore writes the graph as JSON to one or more output paths. The first
// path is the one Load reads back.
type FileStore struct {
	paths  []string
	pretty bool
	mu     sync.RWMutex
}

// NewFileStore requires at least one output path.
func NewFileStore(paths []string, pretty bool) (*FileStore, error) {
	if len(paths) == 0 {
		return nil, errors.New("file store needs at least one output path")
	}
	cp := make([]string, len(paths))
	copy(cp, paths)
	return &FileStore{paths: cp, pretty: pretty}, nil
}

// Paths returns the configured output paths.
func (s *FileStore) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Save encodes g once and writes it to every path. Each write goes to a
// temporary file in the destination directory and is renamed into place, so
// readers never observe a partial document. Failures on individual paths are
// joined; paths written before a failure keep the new graph.
func (s *FileStore) Save(ctx context.Context, g *graph.Graph) error {
	var buf bytes.Buffer
	if err := graph.Encode(&buf, g, s.pretty); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, p := range s.paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeAtomic(p, buf.Bytes()); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", p, err))
			continue
		}
		slog.Debug("Graph written", logfields.Path(p), slog.Int("bytes", buf.Len()))
	}
	return errors.Join(errs...)
}

// Load reads and validates the graph at the first path.
func (s *FileStore) Load(ctx context.Context) (*graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.paths[0]
	// #nosec G304 - output path comes from configuration
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound{Location: p}
		}
		return nil, fmt.Errorf("open graph: %w", err)
	}
	defer func() { _ = f.Close() }()

	return graph.Decode(f)
}

// Exists reports whether every output path holds a file.
func (s *FileStore) Exists(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.paths {
		info, err := os.Stat(p)
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if info.IsDir() {
			return false, nil
		}
	}
	return true, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
