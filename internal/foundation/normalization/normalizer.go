// Package normalization maps loosely written configuration strings onto
// closed sets of values (log levels, log formats, node categories).
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer resolves case- and whitespace-insensitive strings to values of T.
type Normalizer[T comparable] struct {
	name     string
	values   map[string]T
	fallback T
	keys     []string
}

// New builds a Normalizer. name is used in error messages only.
func New[T comparable](name string, values map[string]T, fallback T) *Normalizer[T] {
	n := &Normalizer[T]{
		name:     name,
		values:   make(map[string]T, len(values)),
		fallback: fallback,
		keys:     make([]string, 0, len(values)),
	}
	for k, v := range values {
		key := clean(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	sort.Strings(n.keys)
	return n
}

// Normalize returns the matching value or the fallback.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[clean(raw)]; ok {
		return v
	}
	return n.fallback
}

// Parse is Normalize with an error for unknown input. Empty input yields the
// fallback without error.
func (n *Normalizer[T]) Parse(raw string) (T, error) {
	if strings.TrimSpace(raw) == "" {
		return n.fallback, nil
	}
	if v, ok := n.values[clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", n.name, raw, strings.Join(n.keys, ", "))
}

// Valid reports whether raw names a known value.
func (n *Normalizer[T]) Valid(raw string) bool {
	_, ok := n.values[clean(raw)]
	return ok
}

// Keys returns the accepted spellings in sorted order.
func (n *Normalizer[T]) Keys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
