package index

import (
	"time"

	"codeatlas/internal/graph"
)

// PathEntry groups the definitions declared in one file, keyed by the
// file's normalized path.
type PathEntry struct {
	FileID      string
	ClassIDs    []string
	FunctionIDs []string
	TypeIDs     []string
}

// Adjacency holds per-node neighbor id lists for one relation kind,
// in first-seen order.
type Adjacency struct {
	In  []string
	Out []string
}

// DomainRelationship is one recorded non-membership edge out of a domain.
type DomainRelationship struct {
	Type    string
	EndNode string
}

// DomainEntry aggregates one domain's membership and relationships.
type DomainEntry struct {
	MemberIDs     []string
	Relationships []DomainRelationship
}

// Summary holds precomputed counters for the whole graph.
type Summary struct {
	Files              int    `json:"files"`
	Classes            int    `json:"classes"`
	Functions          int    `json:"functions"`
	Types              int    `json:"types"`
	Domains            int    `json:"domains"`
	PrimaryLanguage    string `json:"primaryLanguage,omitempty"`
	TotalNodes         int    `json:"totalNodes"`
	TotalRelationships int    `json:"totalRelationships"`
}

// IndexedGraph is the immutable artifact produced by Build. All index
// containers preserve first-seen insertion order from the input sequence;
// that order is the contract for deterministic pagination. Safe for
// concurrent reads.
type IndexedGraph struct {
	cacheKey string
	cachedAt time.Time

	nodeByID  map[string]*graph.Node
	nodeOrder []string

	labelIndex map[string][]string

	nameIndex map[string][]string
	nameKeys  []string

	pathIndex map[string]*PathEntry
	pathKeys  []string

	dirIndex map[string][]string

	callAdj   map[string]*Adjacency
	importAdj map[string]*Adjacency

	domainIndex map[string]*DomainEntry

	summary Summary
}

// CacheKey returns the idempotency key this graph was built under.
func (g *IndexedGraph) CacheKey() string { return g.cacheKey }

// CachedAt returns the construction timestamp.
func (g *IndexedGraph) CachedAt() time.Time { return g.cachedAt }

// NodeCount returns the number of indexed nodes.
func (g *IndexedGraph) NodeCount() int { return len(g.nodeByID) }

// NodeByID looks up a node by id.
func (g *IndexedGraph) NodeByID(id string) (*graph.Node, bool) {
	n, ok := g.nodeByID[id]
	return n, ok
}

// NodeIDs returns all node ids in first-seen order.
func (g *IndexedGraph) NodeIDs() []string { return g.nodeOrder }

// IDsByLabel returns the ids carrying the given primary label.
func (g *IndexedGraph) IDsByLabel(label string) []string { return g.labelIndex[label] }

// NameKeys returns the lower-cased name keys in first-seen order.
func (g *IndexedGraph) NameKeys() []string { return g.nameKeys }

// IDsByName returns the ids registered under a lower-cased name key.
func (g *IndexedGraph) IDsByName(lowerName string) []string { return g.nameIndex[lowerName] }

// PathKeys returns the normalized path keys in first-seen order.
func (g *IndexedGraph) PathKeys() []string { return g.pathKeys }

// PathEntry returns the definitions recorded under a normalized path.
func (g *IndexedGraph) PathEntry(normPath string) (*PathEntry, bool) {
	e, ok := g.pathIndex[normPath]
	return e, ok
}

// FilesInDir returns the file ids recorded under a normalized directory.
func (g *IndexedGraph) FilesInDir(dir string) []string { return g.dirIndex[dir] }

// CallAdjacency returns the call adjacency for a node. A node with no
// call edges yields an empty adjacency, not nil lists callers must guard.
func (g *IndexedGraph) CallAdjacency(id string) Adjacency {
	if a, ok := g.callAdj[id]; ok {
		return *a
	}
	return Adjacency{}
}

// ImportAdjacency returns the import adjacency for a node.
func (g *IndexedGraph) ImportAdjacency(id string) Adjacency {
	if a, ok := g.importAdj[id]; ok {
		return *a
	}
	return Adjacency{}
}

// Domain returns the aggregated entry for a domain name.
func (g *IndexedGraph) Domain(name string) (*DomainEntry, bool) {
	e, ok := g.domainIndex[name]
	return e, ok
}

// Summary returns the precomputed graph counters.
func (g *IndexedGraph) Summary() Summary { return g.summary }
