package index

import (
	"strings"
	"time"

	"codeatlas/internal/graph"
	"codeatlas/util"
)

// Build constructs an IndexedGraph from one raw snapshot in a single pass
// over the nodes followed by a single pass over the relationships.
//
// Building never fails: a record missing required fields is skipped, not
// fatal. Every id registered in a secondary index is guaranteed to be a
// key of the primary node map at construction time.
func Build(snap *graph.Snapshot, cacheKey string) *IndexedGraph {
	g := &IndexedGraph{
		cacheKey:    cacheKey,
		cachedAt:    time.Now(),
		nodeByID:    make(map[string]*graph.Node, len(snap.Nodes)),
		labelIndex:  make(map[string][]string),
		nameIndex:   make(map[string][]string),
		pathIndex:   make(map[string]*PathEntry),
		dirIndex:    make(map[string][]string),
		callAdj:     make(map[string]*Adjacency),
		importAdj:   make(map[string]*Adjacency),
		domainIndex: make(map[string]*DomainEntry),
	}

	langCounts := make(map[string]int)

	for i := range snap.Nodes {
		n := &snap.Nodes[i]
		if n.ID == "" {
			continue
		}
		if _, dup := g.nodeByID[n.ID]; dup {
			continue
		}

		g.nodeByID[n.ID] = n
		g.nodeOrder = append(g.nodeOrder, n.ID)

		label := n.PrimaryLabel()
		if label != "" {
			g.labelIndex[label] = append(g.labelIndex[label], n.ID)
		}

		if n.Properties.Name != "" {
			key := util.NormalizeName(n.Properties.Name)
			if _, seen := g.nameIndex[key]; !seen {
				g.nameKeys = append(g.nameKeys, key)
			}
			g.nameIndex[key] = append(g.nameIndex[key], n.ID)
		}

		g.indexByPath(n, label, langCounts)

		switch label {
		case graph.LabelFile:
			g.summary.Files++
		case graph.LabelClass:
			g.summary.Classes++
		case graph.LabelFunction:
			g.summary.Functions++
		case graph.LabelType:
			g.summary.Types++
		case graph.LabelDomain:
			g.summary.Domains++
			name := n.Properties.Name
			if name == "" {
				name = n.ID
			}
			if _, ok := g.domainIndex[name]; !ok {
				g.domainIndex[name] = &DomainEntry{}
			}
		}
	}

	for i := range snap.Relationships {
		g.indexRelationship(&snap.Relationships[i])
	}

	g.summary.TotalNodes = len(g.nodeByID)
	g.summary.TotalRelationships = len(snap.Relationships)
	g.summary.PrimaryLanguage = dominantLanguage(langCounts)

	return g
}

// indexByPath registers a node under its normalized file path: File nodes
// claim the path itself, definitions (classes/functions/types) whose
// declaring file is known are appended to the per-kind lists.
func (g *IndexedGraph) indexByPath(n *graph.Node, label string, langCounts map[string]int) {
	p := util.NormalizePath(n.Properties.FilePath)
	if p == "" {
		return
	}

	entry, ok := g.pathIndex[p]
	if !ok {
		entry = &PathEntry{}
		g.pathIndex[p] = entry
		g.pathKeys = append(g.pathKeys, p)
	}

	switch label {
	case graph.LabelFile:
		if entry.FileID == "" {
			entry.FileID = n.ID
		}
		dir := util.DirOf(p)
		g.dirIndex[dir] = append(g.dirIndex[dir], n.ID)
		if lang := languageOf(p); lang != "" {
			langCounts[lang]++
		}
	case graph.LabelClass:
		entry.ClassIDs = append(entry.ClassIDs, n.ID)
	case graph.LabelFunction:
		entry.FunctionIDs = append(entry.FunctionIDs, n.ID)
	case graph.LabelType:
		entry.TypeIDs = append(entry.TypeIDs, n.ID)
	}
}

// indexRelationship routes one raw relationship into the adjacency or
// domain structures. Relationships referencing unknown node ids are
// skipped; a dangling endpoint must never enter an index.
func (g *IndexedGraph) indexRelationship(r *graph.Relationship) {
	if r.StartNode == "" || r.EndNode == "" {
		return
	}

	start, okStart := g.nodeByID[r.StartNode]
	_, okEnd := g.nodeByID[r.EndNode]
	if !okStart || !okEnd {
		return
	}

	switch {
	case strings.EqualFold(r.Type, graph.RelationCalls):
		appendAdjacency(g.callAdj, r.StartNode, r.EndNode)
	case strings.EqualFold(r.Type, graph.RelationImports):
		appendAdjacency(g.importAdj, r.StartNode, r.EndNode)
	case start.PrimaryLabel() == graph.LabelDomain:
		g.indexDomainRelationship(start, r)
	}
}

// indexDomainRelationship records a domain-typed relationship: membership
// kinds extend the domain's member list, everything else is kept as a
// named relationship.
func (g *IndexedGraph) indexDomainRelationship(domain *graph.Node, r *graph.Relationship) {
	name := domain.Properties.Name
	if name == "" {
		name = domain.ID
	}

	entry, ok := g.domainIndex[name]
	if !ok {
		entry = &DomainEntry{}
		g.domainIndex[name] = entry
	}

	if strings.EqualFold(r.Type, graph.RelationContains) {
		entry.MemberIDs = append(entry.MemberIDs, r.EndNode)
		return
	}

	entry.Relationships = append(entry.Relationships, DomainRelationship{
		Type:    r.Type,
		EndNode: r.EndNode,
	})
}

func appendAdjacency(adj map[string]*Adjacency, from, to string) {
	out, ok := adj[from]
	if !ok {
		out = &Adjacency{}
		adj[from] = out
	}
	out.Out = append(out.Out, to)

	in, ok := adj[to]
	if !ok {
		in = &Adjacency{}
		adj[to] = in
	}
	in.In = append(in.In, from)
}

var extLanguages = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".java": "java",
	".rb":   "ruby",
	".rs":   "rust",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cs":   "csharp",
	".kt":   "kotlin",
	".php":  "php",
	".lua":  "lua",
	".zig":  "zig",
}

func languageOf(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return ""
	}
	return extLanguages[strings.ToLower(path[idx:])]
}

// dominantLanguage picks the most common language by file count;
// ties break toward the lexically smaller name to stay deterministic.
func dominantLanguage(counts map[string]int) string {
	best := ""
	bestCount := 0
	for lang, c := range counts {
		if c > bestCount || (c == bestCount && best != "" && lang < best) {
			best = lang
			bestCount = c
		}
	}
	return best
}
