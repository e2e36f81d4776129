package query

import (
	"fmt"
	"regexp"
	"strings"

	"codeatlas/internal/graph"
	"codeatlas/internal/index"
	"codeatlas/util"
)

// handleGetNode resolves a single node by id.
func handleGetNode(req *Request, g *index.IndexedGraph) (*outcome, *Error) {
	if req.TargetID == "" {
		return nil, invalidParams("targetId is required", "pass the node id to look up")
	}

	n, ok := g.NodeByID(req.TargetID)
	if !ok {
		return nil, notFound(fmt.Sprintf("node %q not found", req.TargetID))
	}

	result := NodeResult{Node: graph.Describe(n)}
	if req.IncludeRaw {
		result.Raw = n
	}

	return &outcome{result: result}, nil
}

// handleSearch scans the name index for keys containing the lower-cased
// search text, applying optional label and path-prefix filters per bucket.
func handleSearch(req *Request, g *index.IndexedGraph) (*outcome, *Error) {
	if req.SearchText == "" {
		return nil, invalidParams("searchText is required", "pass a substring to search node names for")
	}

	limit := req.limitOr(DefaultLimit)
	needle := util.NormalizeName(req.SearchText)
	labels := labelSet(req.Labels)
	prefix := util.NormalizePath(req.FilePathPrefix)

	nodes := make([]NodeDescriptor, 0)
	hasMore := false

scan:
	for _, key := range g.NameKeys() {
		if !strings.Contains(key, needle) {
			continue
		}
		for _, id := range g.IDsByName(key) {
			n, ok := g.NodeByID(id)
			if !ok {
				continue // stale index entry
			}
			if labels != nil && !labels[n.PrimaryLabel()] {
				continue
			}
			if prefix != "" && !strings.HasPrefix(util.NormalizePath(n.Properties.FilePath), prefix) {
				continue
			}
			nodes = append(nodes, graph.Describe(n))
			if len(nodes) >= limit {
				hasMore = true
				break scan
			}
		}
	}

	return &outcome{
		result: NodesResult{Nodes: nodes},
		page:   &Page{Limit: limit, HasMore: hasMore},
	}, nil
}

// handleListNodes filters the candidate id set (per-label in request order,
// or all nodes) through the conjunction of all supplied filters.
func handleListNodes(req *Request, g *index.IndexedGraph) (*outcome, *Error) {
	var namePattern *regexp.Regexp
	if req.NamePattern != "" {
		re, err := regexp.Compile("(?i)" + req.NamePattern)
		if err != nil {
			return nil, invalidParams(
				fmt.Sprintf("namePattern is not a valid regular expression: %v", err),
				"fix the pattern syntax; matching is case-insensitive")
		}
		namePattern = re
	}

	limit := req.limitOr(DefaultLimit)
	prefix := util.NormalizePath(req.FilePathPrefix)
	needle := util.NormalizeName(req.SearchText)

	var candidates []string
	if len(req.Labels) > 0 {
		for _, label := range req.Labels {
			candidates = append(candidates, g.IDsByLabel(label)...)
		}
	} else {
		candidates = g.NodeIDs()
	}

	nodes := make([]NodeDescriptor, 0)
	hasMore := false

	for _, id := range candidates {
		n, ok := g.NodeByID(id)
		if !ok {
			continue
		}
		if prefix != "" && !strings.HasPrefix(util.NormalizePath(n.Properties.FilePath), prefix) {
			continue
		}
		if needle != "" && !strings.Contains(util.NormalizeName(n.Properties.Name), needle) {
			continue
		}
		if namePattern != nil && !namePattern.MatchString(n.Properties.Name) {
			continue
		}
		nodes = append(nodes, graph.Describe(n))
		if len(nodes) >= limit {
			hasMore = true
			break
		}
	}

	return &outcome{
		result: NodesResult{Nodes: nodes},
		page:   &Page{Limit: limit, HasMore: hasMore},
	}, nil
}

func labelSet(labels []string) map[string]bool {
	if len(labels) == 0 {
		return nil
	}
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}
