package query

import (
	"fmt"

	"codeatlas/internal/graph"
	"codeatlas/internal/index"
)

func node(id, label, name, filePath string) graph.Node {
	return graph.Node{
		ID:         id,
		Labels:     []string{label},
		Properties: graph.Properties{Name: name, FilePath: filePath},
	}
}

// fixtureSnapshot is a small codebase graph exercising every index:
// three files, functions with call edges, a class, a type, one domain,
// and both file-attached and definition-attached imports.
func fixtureSnapshot() *graph.Snapshot {
	snap := &graph.Snapshot{
		Nodes: []graph.Node{
			node("file:users", graph.LabelFile, "service.ts", "src/users/service.ts"),
			node("file:utils", graph.LabelFile, "helpers.ts", "src/utils/helpers.ts"),
			node("file:posts", graph.LabelFile, "service.ts", "src/posts/service.ts"),
			node("fn:getUserById", graph.LabelFunction, "getUserById", "src/users/service.ts"),
			node("fn:getPostById", graph.LabelFunction, "getPostById", "src/posts/service.ts"),
			node("fn:deleteUser", graph.LabelFunction, "deleteUser", "src/utils/helpers.ts"),
			node("cls:UserService", graph.LabelClass, "UserService", "src/users/service.ts"),
			node("type:User", graph.LabelType, "User", "src/users/model.ts"),
			node("dom:users", graph.LabelDomain, "Users", ""),
			node("mod:lodash", graph.LabelExternalModule, "lodash", ""),
			node("mod:utils", graph.LabelLocalModule, "utils", ""),
		},
		Relationships: []graph.Relationship{
			{Type: "calls", StartNode: "fn:getUserById", EndNode: "fn:deleteUser"},
			{Type: "IMPORTS", StartNode: "file:users", EndNode: "mod:lodash"},
			// Import attached to a definition instead of its file.
			{Type: "IMPORTS", StartNode: "fn:getUserById", EndNode: "mod:utils"},
			{Type: "CONTAINS", StartNode: "dom:users", EndNode: "fn:getUserById"},
			{Type: "CONTAINS", StartNode: "dom:users", EndNode: "fn:deleteUser"},
			{Type: "DEPENDS_ON", StartNode: "dom:users", EndNode: "mod:lodash"},
		},
	}

	// Ten callers of getUserById for pagination assertions.
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("fn:caller%d", i)
		snap.Nodes = append(snap.Nodes,
			node(id, graph.LabelFunction, fmt.Sprintf("caller%d", i), "src/callers/c.ts"))
		snap.Relationships = append(snap.Relationships,
			graph.Relationship{Type: "calls", StartNode: id, EndNode: "fn:getUserById"})
	}

	return snap
}

func fixtureGraph() *index.IndexedGraph {
	return index.Build(fixtureSnapshot(), "fixture")
}

func descriptorIDs(nodes []NodeDescriptor) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func descriptorNames(nodes []NodeDescriptor) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	return names
}
