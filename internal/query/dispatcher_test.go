package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeatlas/internal/cache"
	"codeatlas/internal/graph"
)

// memArchive is an in-memory Archive for dispatcher tests.
type memArchive struct {
	snapshots map[string]*graph.Snapshot
	saves     int
}

func newMemArchive() *memArchive {
	return &memArchive{snapshots: make(map[string]*graph.Snapshot)}
}

func (a *memArchive) Save(ctx context.Context, key string, snap *graph.Snapshot) error {
	a.snapshots[key] = snap
	a.saves++
	return nil
}

func (a *memArchive) Load(ctx context.Context, key string) (*graph.Snapshot, error) {
	return a.snapshots[key], nil
}

// staticEval returns a fixed value for any expression.
type staticEval struct {
	value any
	err   error
}

func (e *staticEval) Evaluate(ctx context.Context, snap *graph.Snapshot, expr string) (any, error) {
	return e.value, e.err
}

func newDispatcher(t *testing.T, archive Archive, eval Evaluator) *Dispatcher {
	t.Helper()
	store, err := cache.New(4)
	require.NoError(t, err)
	return NewDispatcher(store, archive, eval)
}

func TestDispatcherBuildOnMissThenCache(t *testing.T) {
	d := newDispatcher(t, nil, nil)
	ctx := context.Background()

	req := &Request{Query: TypeSummary, IdempotencyKey: "k1"}

	first, qerr := d.Execute(ctx, req, fixtureSnapshot())
	require.Nil(t, qerr)
	assert.Equal(t, SourceAPI, first.Source, "a fresh build is marked api")
	assert.Equal(t, "k1", first.CacheKey)
	assert.False(t, first.CachedAt.IsZero())

	second, qerr := d.Execute(ctx, req, nil)
	require.Nil(t, qerr)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, first.CachedAt, second.CachedAt)
}

func TestDispatcherCacheMiss(t *testing.T) {
	d := newDispatcher(t, nil, nil)

	_, qerr := d.Execute(context.Background(), &Request{Query: TypeSummary, IdempotencyKey: "k1"}, nil)
	require.NotNil(t, qerr)
	assert.Equal(t, CodeCacheMiss, qerr.Code)
	assert.True(t, qerr.Retryable)
}

func TestDispatcherGraphStatusWithoutGraph(t *testing.T) {
	d := newDispatcher(t, nil, nil)

	resp, qerr := d.Execute(context.Background(), &Request{Query: TypeGraphStatus, IdempotencyKey: "k1"}, nil)
	require.Nil(t, qerr)

	result := resp.Result.(StatusResult)
	assert.False(t, result.Cached)
	assert.Equal(t, "k1", result.CacheKey)
	assert.Equal(t, 0, result.CacheStats.Graphs)
	assert.Nil(t, result.Summary)
}

func TestDispatcherGraphStatusWithGraph(t *testing.T) {
	d := newDispatcher(t, nil, nil)
	ctx := context.Background()

	_, qerr := d.Execute(ctx, &Request{Query: TypeSummary, IdempotencyKey: "k1"}, fixtureSnapshot())
	require.Nil(t, qerr)

	resp, qerr := d.Execute(ctx, &Request{Query: TypeGraphStatus, IdempotencyKey: "k1"}, nil)
	require.Nil(t, qerr)

	result := resp.Result.(StatusResult)
	assert.True(t, result.Cached)
	require.NotNil(t, result.Summary)
	assert.Equal(t, 1, result.CacheStats.Graphs)
	assert.False(t, result.CachedAt.IsZero())
}

func TestDispatcherCacheKeyIgnoresFile(t *testing.T) {
	d := newDispatcher(t, nil, nil)
	ctx := context.Background()

	_, qerr := d.Execute(ctx, &Request{Query: TypeSummary, IdempotencyKey: "k1", File: "a.ts"}, fixtureSnapshot())
	require.Nil(t, qerr)

	resp, qerr := d.Execute(ctx, &Request{Query: TypeSummary, IdempotencyKey: "k1", File: "entirely/other.ts"}, nil)
	require.Nil(t, qerr)
	assert.Equal(t, SourceCache, resp.Source, "the stated file never affects cache hits")
}

func TestDispatcherInvalidQuery(t *testing.T) {
	d := newDispatcher(t, nil, nil)

	_, qerr := d.Execute(context.Background(), &Request{Query: "explode", IdempotencyKey: "k1"}, nil)
	require.NotNil(t, qerr)
	assert.Equal(t, CodeInvalidQuery, qerr.Code)
}

func TestDispatcherMissingIdempotencyKey(t *testing.T) {
	d := newDispatcher(t, nil, nil)

	_, qerr := d.Execute(context.Background(), &Request{Query: TypeSummary}, nil)
	require.NotNil(t, qerr)
	assert.Equal(t, CodeInvalidParams, qerr.Code)
}

func TestDispatcherArchiveRehydration(t *testing.T) {
	arc := newMemArchive()
	d := newDispatcher(t, arc, nil)
	ctx := context.Background()

	// First request archives the snapshot alongside indexing it.
	_, qerr := d.Execute(ctx, &Request{Query: TypeSummary, IdempotencyKey: "k1"}, fixtureSnapshot())
	require.Nil(t, qerr)
	assert.Equal(t, 1, arc.saves)

	// A fresh dispatcher (new process) misses the cache but rehydrates
	// from the archive instead of failing with CACHE_MISS.
	d2 := newDispatcher(t, arc, nil)
	resp, qerr := d2.Execute(ctx, &Request{Query: TypeSummary, IdempotencyKey: "k1"}, nil)
	require.Nil(t, qerr)
	assert.Equal(t, SourceAPI, resp.Source)

	// Unknown keys still miss.
	_, qerr = d2.Execute(ctx, &Request{Query: TypeSummary, IdempotencyKey: "k2"}, nil)
	require.NotNil(t, qerr)
	assert.Equal(t, CodeCacheMiss, qerr.Code)
}

func TestDispatcherEscapeHatch(t *testing.T) {
	t.Run("delegates unrecognized queries with a jq filter", func(t *testing.T) {
		d := newDispatcher(t, nil, &staticEval{value: float64(21)})
		resp, qerr := d.Execute(context.Background(), &Request{
			Query:          "raw",
			IdempotencyKey: "k1",
			JQFilter:       ".nodes | length",
		}, fixtureSnapshot())
		require.Nil(t, qerr)
		assert.Equal(t, float64(21), resp.Result)
	})

	t.Run("evaluation failure surfaces as BAD_JQ", func(t *testing.T) {
		d := newDispatcher(t, nil, &staticEval{err: assert.AnError})
		_, qerr := d.Execute(context.Background(), &Request{
			Query:          "raw",
			IdempotencyKey: "k1",
			JQFilter:       "!!",
		}, fixtureSnapshot())
		require.NotNil(t, qerr)
		assert.Equal(t, CodeBadJQ, qerr.Code)
	})

	t.Run("no evaluator configured", func(t *testing.T) {
		d := newDispatcher(t, nil, nil)
		_, qerr := d.Execute(context.Background(), &Request{
			Query:          "raw",
			IdempotencyKey: "k1",
			JQFilter:       ".",
		}, fixtureSnapshot())
		require.NotNil(t, qerr)
		assert.Equal(t, CodeInvalidQuery, qerr.Code)
	})

	t.Run("no snapshot available", func(t *testing.T) {
		d := newDispatcher(t, nil, &staticEval{value: 1})
		_, qerr := d.Execute(context.Background(), &Request{
			Query:          "raw",
			IdempotencyKey: "k1",
			JQFilter:       ".",
		}, nil)
		require.NotNil(t, qerr)
		assert.Equal(t, CodeCacheMiss, qerr.Code)
	})
}

func TestCatalogCoversEveryQueryType(t *testing.T) {
	catalog := Catalog()
	seen := map[Type]bool{}
	for _, entry := range catalog {
		assert.True(t, knownType(entry.Query), "catalog entry %q must be a known type", entry.Query)
		assert.False(t, seen[entry.Query], "duplicate catalog entry %q", entry.Query)
		assert.NotEmpty(t, entry.Description)
		assert.NotEmpty(t, entry.Phase)
		seen[entry.Query] = true
	}
	assert.Len(t, catalog, 12)
}
