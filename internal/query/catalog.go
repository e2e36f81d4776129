package query

// CatalogEntry describes one query type for client introspection.
type CatalogEntry struct {
	Query       Type     `json:"query"`
	Description string   `json:"description"`
	Required    []string `json:"required"`
	Optional    []string `json:"optional"`
	Phase       string   `json:"phase"`
}

// Rollout phases for catalog entries.
const (
	PhaseStable       = "stable"
	PhaseBeta         = "beta"
	PhaseExperimental = "experimental"
)

// Catalog lists every query type with its parameters and rollout phase.
// The idempotencyKey parameter is required by all queries and omitted here.
func Catalog() []CatalogEntry {
	return []CatalogEntry{
		{
			Query:       TypeGetNode,
			Description: "Look up a single node by id and return its descriptor.",
			Required:    []string{"targetId"},
			Optional:    []string{"includeRaw"},
			Phase:       PhaseStable,
		},
		{
			Query:       TypeSearch,
			Description: "Case-insensitive substring search over node names.",
			Required:    []string{"searchText"},
			Optional:    []string{"labels", "filePathPrefix", "limit"},
			Phase:       PhaseStable,
		},
		{
			Query:       TypeListNodes,
			Description: "List nodes filtered by label, name pattern, path prefix, and substring.",
			Required:    nil,
			Optional:    []string{"labels", "namePattern", "filePathPrefix", "searchText", "limit"},
			Phase:       PhaseStable,
		},
		{
			Query:       TypeGraphStatus,
			Description: "Report whether a graph is cached under the idempotency key.",
			Required:    nil,
			Optional:    nil,
			Phase:       PhaseStable,
		},
		{
			Query:       TypeSummary,
			Description: "Return the precomputed graph counters.",
			Required:    nil,
			Optional:    nil,
			Phase:       PhaseStable,
		},
		{
			Query:       TypeFunctionCallsIn,
			Description: "List the callers of a function.",
			Required:    []string{"targetId"},
			Optional:    []string{"limit"},
			Phase:       PhaseStable,
		},
		{
			Query:       TypeFunctionCallsOut,
			Description: "List the functions a function calls.",
			Required:    []string{"targetId"},
			Optional:    []string{"limit"},
			Phase:       PhaseStable,
		},
		{
			Query:       TypeDefinitionsInFile,
			Description: "List the classes, functions, and types declared in a file.",
			Required:    []string{"targetId or filePathPrefix"},
			Optional:    []string{"limit"},
			Phase:       PhaseStable,
		},
		{
			Query:       TypeFileImports,
			Description: "List what a file or module imports.",
			Required:    []string{"targetId"},
			Optional:    []string{"limit"},
			Phase:       PhaseStable,
		},
		{
			Query:       TypeDomainMap,
			Description: "Enumerate all domains with member counts and relationships.",
			Required:    nil,
			Optional:    nil,
			Phase:       PhaseStable,
		},
		{
			Query:       TypeDomainMembership,
			Description: "List the members of a domain by name or node id.",
			Required:    []string{"searchText or targetId"},
			Optional:    []string{"limit"},
			Phase:       PhaseStable,
		},
		{
			Query:       TypeNeighborhood,
			Description: "Bounded breadth-first expansion around a node across call and import edges.",
			Required:    []string{"targetId"},
			Optional:    []string{"depth", "relationshipTypes", "limit"},
			Phase:       PhaseBeta,
		},
	}
}
