package query

import (
	"fmt"
	"strings"

	"codeatlas/internal/graph"
	"codeatlas/internal/index"
	"codeatlas/util"
)

// direction selects which side of an adjacency entry a call query reads.
type direction int

const (
	directionIn direction = iota
	directionOut
)

// handleFunctionCalls serves function_calls_in and function_calls_out.
// hasMore is exact here since the full adjacency list is known up front.
func handleFunctionCalls(req *Request, g *index.IndexedGraph, dir direction) (*outcome, *Error) {
	if req.TargetID == "" {
		return nil, invalidParams("targetId is required", "pass the id of the function to inspect")
	}

	n, ok := g.NodeByID(req.TargetID)
	if !ok {
		return nil, notFound(fmt.Sprintf("node %q not found", req.TargetID))
	}
	if n.PrimaryLabel() != graph.LabelFunction {
		return nil, invalidParams(
			fmt.Sprintf("target must be a Function node, found %q", n.PrimaryLabel()),
			"call queries only apply to functions")
	}

	adj := g.CallAdjacency(req.TargetID)
	neighbors := adj.Out
	if dir == directionIn {
		neighbors = adj.In
	}

	limit := req.limitOr(DefaultLimit)
	hasMore := len(neighbors) > limit
	if hasMore {
		neighbors = neighbors[:limit]
	}

	// The target itself is not echoed back; an empty adjacency yields
	// empty nodes and edges, not an error.
	result := SubgraphResult{
		Nodes: make([]NodeDescriptor, 0, len(neighbors)),
		Edges: make([]EdgeDescriptor, 0, len(neighbors)),
	}
	for _, id := range neighbors {
		peer, ok := g.NodeByID(id)
		if !ok {
			continue
		}
		result.Nodes = append(result.Nodes, graph.Describe(peer))
		edge := EdgeDescriptor{Type: graph.RelationCalls, From: req.TargetID, To: id}
		if dir == directionIn {
			edge.From, edge.To = id, req.TargetID
		}
		result.Edges = append(result.Edges, edge)
	}

	return &outcome{
		result: result,
		page:   &Page{Limit: limit, HasMore: hasMore},
	}, nil
}

// handleDefinitionsInFile lists the classes, functions, and types declared
// in one file, resolved from a File node id or a literal path.
func handleDefinitionsInFile(req *Request, g *index.IndexedGraph) (*outcome, *Error) {
	path, qerr := resolveFilePath(req, g)
	if qerr != nil {
		return nil, qerr
	}

	entry, ok := g.PathEntry(path)
	if !ok {
		// Best effort: the caller's path and the indexed path may differ
		// by a root prefix. Take the first suffix-or-prefix match.
		for _, key := range g.PathKeys() {
			if strings.HasSuffix(key, path) || strings.HasSuffix(path, key) {
				path = key
				entry, ok = g.PathEntry(key)
				break
			}
		}
	}
	if !ok {
		return nil, notFound(fmt.Sprintf("no definitions indexed for path %q", path))
	}

	ids := make([]string, 0, len(entry.ClassIDs)+len(entry.FunctionIDs)+len(entry.TypeIDs))
	ids = append(ids, entry.ClassIDs...)
	ids = append(ids, entry.FunctionIDs...)
	ids = append(ids, entry.TypeIDs...)

	limit := req.limitOr(DefaultLimit)
	hasMore := len(ids) > limit
	if hasMore {
		ids = ids[:limit]
	}

	nodes := make([]NodeDescriptor, 0, len(ids))
	for _, id := range ids {
		if n, ok := g.NodeByID(id); ok {
			nodes = append(nodes, graph.Describe(n))
		}
	}

	return &outcome{
		result: FileDefinitionsResult{File: path, Nodes: nodes},
		page:   &Page{Limit: limit, HasMore: hasMore},
	}, nil
}

// resolveFilePath produces the normalized file path for definitions_in_file:
// from a File node's path property when targetId is given, otherwise from
// the filePathPrefix parameter directly.
func resolveFilePath(req *Request, g *index.IndexedGraph) (string, *Error) {
	if req.TargetID != "" {
		n, ok := g.NodeByID(req.TargetID)
		if !ok {
			return "", notFound(fmt.Sprintf("node %q not found", req.TargetID))
		}
		if n.PrimaryLabel() != graph.LabelFile {
			return "", invalidParams(
				fmt.Sprintf("target must be a File node, found %q", n.PrimaryLabel()),
				"pass a File node id or a filePathPrefix instead")
		}
		path := util.NormalizePath(n.Properties.FilePath)
		if path == "" {
			return "", notFound(fmt.Sprintf("file node %q has no path property", req.TargetID))
		}
		return path, nil
	}

	if req.FilePathPrefix != "" {
		return util.NormalizePath(req.FilePathPrefix), nil
	}

	return "", invalidParams("targetId or filePathPrefix is required",
		"identify the file by node id or by path")
}

// handleFileImports lists what a file or module imports. For File targets
// the outgoing imports of every definition in the file are unioned in, to
// tolerate graphs that attach import edges to definitions instead of the
// file node.
func handleFileImports(req *Request, g *index.IndexedGraph) (*outcome, *Error) {
	if req.TargetID == "" {
		return nil, invalidParams("targetId is required", "pass the id of the file or module to inspect")
	}

	n, ok := g.NodeByID(req.TargetID)
	if !ok {
		return nil, notFound(fmt.Sprintf("node %q not found", req.TargetID))
	}

	label := n.PrimaryLabel()
	switch label {
	case graph.LabelFile, graph.LabelLocalModule, graph.LabelExternalModule:
	default:
		return nil, invalidParams(
			fmt.Sprintf("target must be a File, LocalModule, or ExternalModule node, found %q", label),
			"import queries only apply to files and modules")
	}

	seen := make(map[string]bool)
	var imported []string
	collect := func(from string) {
		for _, id := range g.ImportAdjacency(from).Out {
			if !seen[id] {
				seen[id] = true
				imported = append(imported, id)
			}
		}
	}

	collect(req.TargetID)
	if label == graph.LabelFile {
		if entry, ok := g.PathEntry(util.NormalizePath(n.Properties.FilePath)); ok {
			for _, id := range entry.ClassIDs {
				collect(id)
			}
			for _, id := range entry.FunctionIDs {
				collect(id)
			}
			for _, id := range entry.TypeIDs {
				collect(id)
			}
		}
	}

	var warnings []string
	if label == graph.LabelFile && len(imported) == 0 {
		warnings = append(warnings,
			fmt.Sprintf("no import relationships found for file %q; the snapshot may not record imports for this file", req.TargetID))
	}

	limit := req.limitOr(DefaultLimit)
	hasMore := len(imported) > limit
	if hasMore {
		imported = imported[:limit]
	}

	result := SubgraphResult{
		Nodes: []NodeDescriptor{graph.Describe(n)},
		Edges: make([]EdgeDescriptor, 0, len(imported)),
	}
	for _, id := range imported {
		peer, ok := g.NodeByID(id)
		if !ok {
			continue
		}
		result.Nodes = append(result.Nodes, graph.Describe(peer))
		result.Edges = append(result.Edges, EdgeDescriptor{
			Type: graph.RelationImports,
			From: req.TargetID,
			To:   id,
		})
	}

	return &outcome{
		result:   result,
		page:     &Page{Limit: limit, HasMore: hasMore},
		warnings: warnings,
	}, nil
}

// handleDomainMap reports every domain with its member count and flattened
// relationships.
func handleDomainMap(req *Request, g *index.IndexedGraph) (*outcome, *Error) {
	result := DomainMapResult{
		Domains:       make([]DomainInfo, 0),
		Relationships: make([]DomainRelation, 0),
	}

	for _, id := range g.IDsByLabel(graph.LabelDomain) {
		n, ok := g.NodeByID(id)
		if !ok {
			continue
		}
		name := n.Properties.Name
		if name == "" {
			name = n.ID
		}

		info := DomainInfo{Name: name, Description: n.Properties.Description}
		if entry, ok := g.Domain(name); ok {
			info.MemberCount = len(entry.MemberIDs)
			for _, rel := range entry.Relationships {
				to := rel.EndNode
				if target, ok := g.NodeByID(rel.EndNode); ok && target.Properties.Name != "" {
					to = target.Properties.Name
				}
				result.Relationships = append(result.Relationships, DomainRelation{
					From: name,
					To:   to,
					Type: rel.Type,
				})
			}
		}
		result.Domains = append(result.Domains, info)
	}

	return &outcome{result: result}, nil
}

// handleDomainMembership lists a domain's members, resolving the domain
// name either literally from searchText or via a Domain node id.
func handleDomainMembership(req *Request, g *index.IndexedGraph) (*outcome, *Error) {
	name := req.SearchText
	if name == "" {
		if req.TargetID == "" {
			return nil, invalidParams("searchText or targetId is required",
				"identify the domain by name or by node id")
		}
		n, ok := g.NodeByID(req.TargetID)
		if !ok {
			return nil, notFound(fmt.Sprintf("node %q not found", req.TargetID))
		}
		if n.PrimaryLabel() != graph.LabelDomain {
			return nil, invalidParams(
				fmt.Sprintf("target must be a Domain node, found %q", n.PrimaryLabel()),
				"membership queries only apply to domains")
		}
		name = n.Properties.Name
		if name == "" {
			name = n.ID
		}
	}

	entry, ok := g.Domain(name)
	if !ok {
		return nil, notFound(fmt.Sprintf("domain %q not found", name))
	}

	ids := entry.MemberIDs
	limit := req.limitOr(DefaultLimit)
	hasMore := len(ids) > limit
	if hasMore {
		ids = ids[:limit]
	}

	members := make([]NodeDescriptor, 0, len(ids))
	for _, id := range ids {
		if n, ok := g.NodeByID(id); ok {
			members = append(members, graph.Describe(n))
		}
	}

	return &outcome{
		result: DomainMembershipResult{Domain: name, Members: members},
		page:   &Page{Limit: limit, HasMore: hasMore},
	}, nil
}

// handleNeighborhood performs a bounded breadth-first expansion around a
// target across the selected relation kinds. Each relation is traversed
// bidirectionally, but every emitted edge keeps its original direction.
func handleNeighborhood(req *Request, g *index.IndexedGraph) (*outcome, *Error) {
	if req.TargetID == "" {
		return nil, invalidParams("targetId is required", "pass the id of the node to expand around")
	}

	start, ok := g.NodeByID(req.TargetID)
	if !ok {
		return nil, notFound(fmt.Sprintf("node %q not found", req.TargetID))
	}

	depth := req.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}
	if depth > MaxDepth {
		depth = MaxDepth
	}
	limit := req.limitOr(DefaultNeighborhoodLimit)

	kinds := req.RelationshipTypes
	if len(kinds) == 0 {
		kinds = []string{graph.RelationCalls, graph.RelationImports}
	}

	visited := map[string]bool{req.TargetID: true}
	result := SubgraphResult{
		Nodes: []NodeDescriptor{graph.Describe(start)},
		Edges: make([]EdgeDescriptor, 0),
	}
	hasMore := len(visited) >= limit

	frontier := []string{req.TargetID}
	for d := 0; d < depth && len(frontier) > 0 && !hasMore; d++ {
		var next []string
		for _, cur := range frontier {
			for _, kind := range kinds {
				var adj index.Adjacency
				switch {
				case strings.EqualFold(kind, graph.RelationCalls):
					adj = g.CallAdjacency(cur)
				case strings.EqualFold(kind, graph.RelationImports):
					adj = g.ImportAdjacency(cur)
				default:
					continue // only calls and IMPORTS are traversable
				}

				for _, id := range adj.Out {
					if visit(g, &result, visited, cur, id, kind, false, &next, limit, &hasMore); hasMore {
						break
					}
				}
				if hasMore {
					break
				}
				for _, id := range adj.In {
					if visit(g, &result, visited, cur, id, kind, true, &next, limit, &hasMore); hasMore {
						break
					}
				}
				if hasMore {
					break
				}
			}
			if hasMore {
				break
			}
		}
		frontier = next
	}

	return &outcome{
		result: result,
		page:   &Page{Limit: limit, HasMore: hasMore},
	}, nil
}

// visit admits one neighbor into the expansion, recording the edge in its
// true direction (inbound neighbors point at the current node).
func visit(g *index.IndexedGraph, result *SubgraphResult, visited map[string]bool,
	cur, id, kind string, inbound bool, next *[]string, limit int, hasMore *bool) bool {

	if visited[id] {
		return false
	}
	n, ok := g.NodeByID(id)
	if !ok {
		return false
	}
	if len(visited) >= limit {
		*hasMore = true
		return false
	}

	visited[id] = true
	result.Nodes = append(result.Nodes, graph.Describe(n))
	edge := EdgeDescriptor{Type: kind, From: cur, To: id}
	if inbound {
		edge.From, edge.To = id, cur
	}
	result.Edges = append(result.Edges, edge)
	*next = append(*next, id)

	if len(visited) >= limit {
		*hasMore = true
	}
	return true
}
