package query

import (
	"codeatlas/internal/cache"
	"codeatlas/internal/index"
)

// handleGraphStatus reports whether a graph is cached under the request's
// idempotency key. This is the only query answerable without a cached
// graph, so g may be nil.
func handleGraphStatus(req *Request, g *index.IndexedGraph, stats cache.Status) (*outcome, *Error) {
	result := StatusResult{
		Cached:     g != nil,
		CacheKey:   req.IdempotencyKey,
		CacheStats: stats,
	}
	if g != nil {
		result.CachedAt = g.CachedAt()
		summary := g.Summary()
		result.Summary = &summary
	}
	return &outcome{result: result}, nil
}

// handleSummary returns the precomputed graph counters verbatim.
func handleSummary(req *Request, g *index.IndexedGraph) (*outcome, *Error) {
	return &outcome{result: g.Summary()}, nil
}
