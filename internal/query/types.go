package query

import (
	"time"

	"codeatlas/internal/cache"
	"codeatlas/internal/graph"
	"codeatlas/internal/index"
)

// Type identifies one canonical query in the catalog.
type Type string

const (
	TypeGetNode           Type = "get_node"
	TypeSearch            Type = "search"
	TypeListNodes         Type = "list_nodes"
	TypeGraphStatus       Type = "graph_status"
	TypeSummary           Type = "summary"
	TypeFunctionCallsIn   Type = "function_calls_in"
	TypeFunctionCallsOut  Type = "function_calls_out"
	TypeDefinitionsInFile Type = "definitions_in_file"
	TypeFileImports       Type = "file_imports"
	TypeDomainMap         Type = "domain_map"
	TypeDomainMembership  Type = "domain_membership"
	TypeNeighborhood      Type = "neighborhood"
)

// Default and hard limits for pagination and traversal.
const (
	DefaultLimit             = 200
	DefaultNeighborhoodLimit = 100
	DefaultDepth             = 1
	MaxDepth                 = 3
)

// Request is the caller-facing query contract.
type Request struct {
	Query             Type     `json:"query"`
	File              string   `json:"file,omitempty"`
	IdempotencyKey    string   `json:"idempotencyKey"`
	TargetID          string   `json:"targetId,omitempty"`
	SearchText        string   `json:"searchText,omitempty"`
	NamePattern       string   `json:"namePattern,omitempty"`
	FilePathPrefix    string   `json:"filePathPrefix,omitempty"`
	Labels            []string `json:"labels,omitempty"`
	Depth             int      `json:"depth,omitempty"`
	RelationshipTypes []string `json:"relationshipTypes,omitempty"`
	Limit             int      `json:"limit,omitempty"`
	IncludeRaw        bool     `json:"includeRaw,omitempty"`
	JQFilter          string   `json:"jq_filter,omitempty"`
}

// limitOr returns the requested limit or the given default when unset.
func (r *Request) limitOr(def int) int {
	if r.Limit <= 0 {
		return def
	}
	return r.Limit
}

// Page reports truncation for list-shaped results. HasMore signals only
// that the limit was reached while scanning, not an exact remaining count.
type Page struct {
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

// Response is the success envelope.
type Response struct {
	Query    Type      `json:"query"`
	CacheKey string    `json:"cacheKey"`
	Source   string    `json:"source"`
	CachedAt time.Time `json:"cachedAt,omitzero"`
	Result   any       `json:"result"`
	Page     *Page     `json:"page,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Result sources.
const (
	SourceCache = "cache"
	SourceAPI   = "api"
)

// outcome is what a handler produces on success.
type outcome struct {
	result   any
	page     *Page
	warnings []string
}

// Result payload shapes.

// NodeResult is the get_node payload.
type NodeResult struct {
	Node NodeDescriptor `json:"node"`
	Raw  *graph.Node    `json:"raw,omitempty"`
}

// NodesResult is the payload for search and list_nodes.
type NodesResult struct {
	Nodes []NodeDescriptor `json:"nodes"`
}

// SubgraphResult is the payload for call, import, and neighborhood queries.
type SubgraphResult struct {
	Nodes []NodeDescriptor `json:"nodes"`
	Edges []EdgeDescriptor `json:"edges"`
}

// FileDefinitionsResult is the definitions_in_file payload.
type FileDefinitionsResult struct {
	File  string           `json:"file"`
	Nodes []NodeDescriptor `json:"nodes"`
}

// DomainInfo is one entry in the domain_map payload.
type DomainInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MemberCount int    `json:"memberCount"`
}

// DomainRelation is a flattened domain relationship.
type DomainRelation struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// DomainMapResult is the domain_map payload.
type DomainMapResult struct {
	Domains       []DomainInfo     `json:"domains"`
	Relationships []DomainRelation `json:"relationships"`
}

// DomainMembershipResult is the domain_membership payload.
type DomainMembershipResult struct {
	Domain  string           `json:"domain"`
	Members []NodeDescriptor `json:"members"`
}

// StatusResult is the graph_status payload.
type StatusResult struct {
	Cached     bool           `json:"cached"`
	CacheKey   string         `json:"cacheKey"`
	CacheStats cache.Status   `json:"cacheStats"`
	CachedAt   time.Time      `json:"cachedAt,omitzero"`
	Summary    *index.Summary `json:"summary,omitempty"`
}

// Descriptor aliases keep handler signatures inside this package short.
type (
	NodeDescriptor = graph.NodeDescriptor
	EdgeDescriptor = graph.EdgeDescriptor
)
