// Package cache holds built graph indexes keyed by caller-supplied
// idempotency keys. Capacity is bounded: the least recently used graph
// is evicted when the bound is exceeded.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"codeatlas/internal/index"
)

// DefaultCapacity is the default number of cached graphs.
const DefaultCapacity = 16

// BuildFunc produces an IndexedGraph for a key on a cache miss.
type BuildFunc func() (*index.IndexedGraph, error)

// Status describes the current cache contents.
type Status struct {
	Graphs int      `json:"graphs"`
	Nodes  int      `json:"nodes"`
	Keys   []string `json:"keys"`
}

// Store maps idempotency keys to built graphs. Safe for concurrent use.
// Concurrent builds for the same key are deduplicated: at most one build
// wins and is stored, later callers observe the first build's result.
type Store struct {
	graphs *lru.Cache[string, *index.IndexedGraph]
	flight singleflight.Group
}

// New creates an empty Store bounded to capacity graphs.
// A capacity of 0 or less uses DefaultCapacity.
func New(capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	graphs, err := lru.New[string, *index.IndexedGraph](capacity)
	if err != nil {
		return nil, fmt.Errorf("create graph cache: %w", err)
	}
	return &Store{graphs: graphs}, nil
}

// Get returns the cached graph for a key, if present.
func (s *Store) Get(key string) (*index.IndexedGraph, bool) {
	return s.graphs.Get(key)
}

// GetOrBuild returns the cached graph for a key, building and storing it
// on a miss. The boolean reports whether this call performed the build.
// Rebuilding under a live key is never triggered: an already-present
// entry is returned untouched.
func (s *Store) GetOrBuild(key string, build BuildFunc) (*index.IndexedGraph, bool, error) {
	if g, ok := s.graphs.Get(key); ok {
		return g, false, nil
	}

	built := false
	v, err, _ := s.flight.Do(key, func() (any, error) {
		// A racing caller may have stored the entry while we waited.
		if g, ok := s.graphs.Get(key); ok {
			return g, nil
		}
		g, err := build()
		if err != nil {
			return nil, err
		}
		s.graphs.Add(key, g)
		built = true
		return g, nil
	})
	if err != nil {
		return nil, false, err
	}

	return v.(*index.IndexedGraph), built, nil
}

// StatusSnapshot reports graph count, total node count, and the key list.
// Peek is used so that introspection does not disturb recency.
func (s *Store) StatusSnapshot() Status {
	keys := s.graphs.Keys()
	status := Status{
		Graphs: len(keys),
		Keys:   keys,
	}
	for _, key := range keys {
		if g, ok := s.graphs.Peek(key); ok {
			status.Nodes += g.NodeCount()
		}
	}
	if status.Keys == nil {
		status.Keys = []string{}
	}
	return status
}
