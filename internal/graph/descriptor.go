package graph

import "codeatlas/util"

// NodeDescriptor is the flattened, caller-facing view of a node.
// Recomputed per query, never persisted.
type NodeDescriptor struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Name        string `json:"name,omitempty"`
	FilePath    string `json:"filePath,omitempty"`
	StartLine   int    `json:"startLine,omitempty"`
	EndLine     int    `json:"endLine,omitempty"`
	Description string `json:"description,omitempty"`
}

// EdgeDescriptor is the minimal caller-facing view of one typed edge.
type EdgeDescriptor struct {
	Type string `json:"type"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Describe projects a node into its descriptor. The file path passes
// through normalization so callers always see the canonical form.
func Describe(n *Node) NodeDescriptor {
	return NodeDescriptor{
		ID:          n.ID,
		Label:       n.PrimaryLabel(),
		Name:        n.Properties.Name,
		FilePath:    util.NormalizePath(n.Properties.FilePath),
		StartLine:   n.Properties.StartLine,
		EndLine:     n.Properties.EndLine,
		Description: n.Properties.Description,
	}
}
