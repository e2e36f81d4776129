package graph

import "encoding/json"

// Primary labels with query-level meaning. labels[0] of a node is its
// primary label and determines which query rules apply to it.
const (
	LabelFunction       = "Function"
	LabelClass          = "Class"
	LabelFile           = "File"
	LabelType           = "Type"
	LabelDomain         = "Domain"
	LabelLocalModule    = "LocalModule"
	LabelExternalModule = "ExternalModule"
)

// Relationship types recognized during index construction.
const (
	RelationCalls    = "calls"
	RelationImports  = "IMPORTS"
	RelationContains = "CONTAINS"
)

// Node is one entity in a raw graph snapshot. Immutable once indexed.
type Node struct {
	ID         string     `json:"id"`
	Labels     []string   `json:"labels"`
	Properties Properties `json:"properties"`
}

// PrimaryLabel returns labels[0], or "" for an unlabeled node.
func (n *Node) PrimaryLabel() string {
	if len(n.Labels) == 0 {
		return ""
	}
	return n.Labels[0]
}

// Properties is the node attribute bag. Known fields are lifted out;
// everything else lands in Extra.
type Properties struct {
	Name        string
	FilePath    string
	StartLine   int
	EndLine     int
	Description string
	Extra       map[string]any
}

// UnmarshalJSON lifts the known property keys and keeps the rest in Extra.
// The file path may arrive as either "filePath" or "path".
func (p *Properties) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, val := range raw {
		switch key {
		case "name":
			json.Unmarshal(val, &p.Name)
		case "filePath":
			json.Unmarshal(val, &p.FilePath)
		case "path":
			if p.FilePath == "" {
				json.Unmarshal(val, &p.FilePath)
			}
		case "startLine":
			p.StartLine = unmarshalLine(val)
		case "endLine":
			p.EndLine = unmarshalLine(val)
		case "description":
			json.Unmarshal(val, &p.Description)
		default:
			var v any
			if err := json.Unmarshal(val, &v); err == nil {
				if p.Extra == nil {
					p.Extra = make(map[string]any)
				}
				p.Extra[key] = v
			}
		}
	}

	return nil
}

// MarshalJSON reassembles the flattened bag into its wire form.
func (p Properties) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Extra)+5)
	for k, v := range p.Extra {
		m[k] = v
	}
	if p.Name != "" {
		m["name"] = p.Name
	}
	if p.FilePath != "" {
		m["filePath"] = p.FilePath
	}
	if p.StartLine != 0 {
		m["startLine"] = p.StartLine
	}
	if p.EndLine != 0 {
		m["endLine"] = p.EndLine
	}
	if p.Description != "" {
		m["description"] = p.Description
	}
	return json.Marshal(m)
}

// unmarshalLine accepts line numbers serialized as either JSON numbers
// or numeric strings. Anything else yields 0.
func unmarshalLine(data json.RawMessage) int {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		var v int
		for _, c := range s {
			if c < '0' || c > '9' {
				return 0
			}
			v = v*10 + int(c-'0')
		}
		return v
	}
	return 0
}

// Relationship is a raw typed edge between two node ids. Relationships are
// consumed during index construction and not retained afterward.
type Relationship struct {
	Type       string         `json:"type"`
	StartNode  string         `json:"startNode"`
	EndNode    string         `json:"endNode"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Snapshot is one immutable raw graph as produced by the analysis service.
type Snapshot struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
}
