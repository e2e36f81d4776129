package query

import (
	"context"
	"fmt"

	"codeatlas/internal/cache"
	"codeatlas/internal/graph"
	"codeatlas/internal/index"
)

// Evaluator is the escape-hatch collaborator: it evaluates an arbitrary
// expression against a raw snapshot. Implementations are pluggable and
// may be omitted entirely.
type Evaluator interface {
	Evaluate(ctx context.Context, snap *graph.Snapshot, expression string) (any, error)
}

// Archive is an optional store of raw snapshots keyed by idempotency key.
// Load returns (nil, nil) when no snapshot is archived under the key.
type Archive interface {
	Save(ctx context.Context, key string, snap *graph.Snapshot) error
	Load(ctx context.Context, key string) (*graph.Snapshot, error)
}

// Dispatcher resolves the cache entry for a request and routes it to the
// matching handler. The cache store is passed in explicitly; there is no
// ambient singleton.
type Dispatcher struct {
	store   *cache.Store
	archive Archive   // may be nil
	eval    Evaluator // may be nil
}

// NewDispatcher creates a Dispatcher over the given store. archive and
// eval are optional collaborators; pass nil to disable them.
func NewDispatcher(store *cache.Store, archive Archive, eval Evaluator) *Dispatcher {
	return &Dispatcher{store: store, archive: archive, eval: eval}
}

// Execute runs one query. snap is the raw snapshot supplied alongside the
// request, or nil; it is only consulted when the cache misses. The cache
// is keyed by the idempotency key alone; the request's stated target
// file never affects cache hits.
func (d *Dispatcher) Execute(ctx context.Context, req *Request, snap *graph.Snapshot) (*Response, *Error) {
	if req.IdempotencyKey == "" {
		return nil, invalidParams("idempotencyKey is required",
			"supply a stable key identifying the analyzed snapshot")
	}

	if !knownType(req.Query) {
		if req.JQFilter != "" {
			return d.executeEscapeHatch(ctx, req, snap)
		}
		return nil, invalidQuery(string(req.Query))
	}

	// graph_status works without a cached graph.
	if req.Query == TypeGraphStatus {
		g, _ := d.store.Get(req.IdempotencyKey)
		out, qerr := handleGraphStatus(req, g, d.store.StatusSnapshot())
		if qerr != nil {
			return nil, qerr
		}
		return d.respond(req, g, SourceCache, out), nil
	}

	g, source, qerr := d.resolveGraph(ctx, req, snap)
	if qerr != nil {
		return nil, qerr
	}

	var out *outcome
	switch req.Query {
	case TypeGetNode:
		out, qerr = handleGetNode(req, g)
	case TypeSearch:
		out, qerr = handleSearch(req, g)
	case TypeListNodes:
		out, qerr = handleListNodes(req, g)
	case TypeSummary:
		out, qerr = handleSummary(req, g)
	case TypeFunctionCallsIn:
		out, qerr = handleFunctionCalls(req, g, directionIn)
	case TypeFunctionCallsOut:
		out, qerr = handleFunctionCalls(req, g, directionOut)
	case TypeDefinitionsInFile:
		out, qerr = handleDefinitionsInFile(req, g)
	case TypeFileImports:
		out, qerr = handleFileImports(req, g)
	case TypeDomainMap:
		out, qerr = handleDomainMap(req, g)
	case TypeDomainMembership:
		out, qerr = handleDomainMembership(req, g)
	case TypeNeighborhood:
		out, qerr = handleNeighborhood(req, g)
	default:
		return nil, invalidQuery(string(req.Query))
	}
	if qerr != nil {
		return nil, qerr
	}

	return d.respond(req, g, source, out), nil
}

// resolveGraph finds or builds the indexed graph for the request's key.
// Resolution order: cache, supplied snapshot, archived snapshot.
func (d *Dispatcher) resolveGraph(ctx context.Context, req *Request, snap *graph.Snapshot) (*index.IndexedGraph, string, *Error) {
	if g, ok := d.store.Get(req.IdempotencyKey); ok {
		return g, SourceCache, nil
	}

	if snap == nil && d.archive != nil {
		archived, err := d.archive.Load(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, "", &Error{
				Code:      CodeAPIUnavailable,
				Message:   fmt.Sprintf("loading archived snapshot: %v", err),
				Retryable: true,
			}
		}
		snap = archived
	}

	if snap == nil {
		return nil, "", cacheMiss(req.IdempotencyKey)
	}

	if d.archive != nil {
		// Best effort; an archive failure must not fail the query.
		_ = d.archive.Save(ctx, req.IdempotencyKey, snap)
	}

	g, built, err := d.store.GetOrBuild(req.IdempotencyKey, func() (*index.IndexedGraph, error) {
		return index.Build(snap, req.IdempotencyKey), nil
	})
	if err != nil {
		return nil, "", &Error{Code: CodeAPIUnavailable, Message: err.Error(), Retryable: true}
	}

	source := SourceCache
	if built {
		source = SourceAPI
	}
	return g, source, nil
}

// executeEscapeHatch delegates an unrecognized query carrying a jq_filter
// to the external expression evaluator.
func (d *Dispatcher) executeEscapeHatch(ctx context.Context, req *Request, snap *graph.Snapshot) (*Response, *Error) {
	if d.eval == nil {
		return nil, invalidQuery(string(req.Query))
	}
	if snap == nil && d.archive != nil {
		archived, err := d.archive.Load(ctx, req.IdempotencyKey)
		if err == nil {
			snap = archived
		}
	}
	if snap == nil {
		return nil, cacheMiss(req.IdempotencyKey)
	}

	value, err := d.eval.Evaluate(ctx, snap, req.JQFilter)
	if err != nil {
		return nil, badJQ(err)
	}

	return &Response{
		Query:    req.Query,
		CacheKey: req.IdempotencyKey,
		Source:   SourceAPI,
		Result:   value,
	}, nil
}

func (d *Dispatcher) respond(req *Request, g *index.IndexedGraph, source string, out *outcome) *Response {
	resp := &Response{
		Query:    req.Query,
		CacheKey: req.IdempotencyKey,
		Source:   source,
		Result:   out.result,
		Page:     out.page,
		Warnings: out.warnings,
	}
	if g != nil {
		resp.CachedAt = g.CachedAt()
	}
	return resp
}

func knownType(t Type) bool {
	switch t {
	case TypeGetNode, TypeSearch, TypeListNodes, TypeGraphStatus, TypeSummary,
		TypeFunctionCallsIn, TypeFunctionCallsOut, TypeDefinitionsInFile,
		TypeFileImports, TypeDomainMap, TypeDomainMembership, TypeNeighborhood:
		return true
	}
	return false
}
