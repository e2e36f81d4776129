package server

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"codeatlas/internal/graph"
	"codeatlas/internal/query"
)

// Arguments structs

type QueryArgs struct {
	Query             string          `json:"query" jsonschema:"required,description:The query type to execute (see the query_types tool for the catalog)"`
	IdempotencyKey    string          `json:"idempotency_key" jsonschema:"required,description:Stable key identifying the analyzed snapshot"`
	File              string          `json:"file,omitempty" jsonschema:"description:The file the question is about (informational; never affects cache hits)"`
	TargetID          string          `json:"target_id,omitempty" jsonschema:"description:Node id for id-addressed queries"`
	SearchText        string          `json:"search_text,omitempty" jsonschema:"description:Substring for name search or a domain name"`
	NamePattern       string          `json:"name_pattern,omitempty" jsonschema:"description:Case-insensitive regular expression over node names"`
	FilePathPrefix    string          `json:"file_path_prefix,omitempty" jsonschema:"description:Normalized path prefix filter"`
	Labels            []string        `json:"labels,omitempty" jsonschema:"description:Primary labels to restrict the candidate set to"`
	Depth             int             `json:"depth,omitempty" jsonschema:"description:Neighborhood expansion depth (capped at 3)"`
	RelationshipTypes []string        `json:"relationship_types,omitempty" jsonschema:"description:Relation kinds to traverse (calls and IMPORTS)"`
	Limit             int             `json:"limit,omitempty" jsonschema:"description:Maximum results per page"`
	IncludeRaw        bool            `json:"include_raw,omitempty" jsonschema:"description:Include the untransformed node in get_node results"`
	JQFilter          string          `json:"jq_filter,omitempty" jsonschema:"description:jq expression for escape-hatch queries"`
	Graph             json.RawMessage `json:"graph,omitempty" jsonschema:"description:Raw graph snapshot to index on a cache miss"`
}

type GraphStatusArgs struct {
	IdempotencyKey string `json:"idempotency_key" jsonschema:"required,description:Key to check the cache for"`
}

type QueryTypesArgs struct{}

// errorEnvelope is the wire form of a query failure.
type errorEnvelope struct {
	Error *query.Error `json:"error"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "query",
		Description: "Executes one structured query against the indexed code graph",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args QueryArgs) (*mcp.CallToolResult, any, error) {
		queryReq := &query.Request{
			Query:             query.Type(args.Query),
			File:              args.File,
			IdempotencyKey:    args.IdempotencyKey,
			TargetID:          args.TargetID,
			SearchText:        args.SearchText,
			NamePattern:       args.NamePattern,
			FilePathPrefix:    args.FilePathPrefix,
			Labels:            args.Labels,
			Depth:             args.Depth,
			RelationshipTypes: args.RelationshipTypes,
			Limit:             args.Limit,
			IncludeRaw:        args.IncludeRaw,
			JQFilter:          args.JQFilter,
		}

		var snap *graph.Snapshot
		if len(args.Graph) > 0 {
			var decoded graph.Snapshot
			if err := json.Unmarshal(args.Graph, &decoded); err != nil {
				s.log.Warn("rejecting malformed snapshot",
					zap.String("key", args.IdempotencyKey), zap.Error(err))
				return jsonResultError(&query.Error{
					Code:    query.CodeInvalidParams,
					Message: "graph is not a valid snapshot: " + err.Error(),
					Detail:  "supply {nodes: [...], relationships: [...]}",
				}), nil, nil
			}
			snap = &decoded
		}

		resp, qerr := s.dispatcher.Execute(ctx, queryReq, snap)
		if qerr != nil {
			s.log.Debug("query failed",
				zap.String("query", args.Query),
				zap.String("code", string(qerr.Code)))
			return jsonResultError(qerr), nil, nil
		}

		s.log.Debug("query served",
			zap.String("query", args.Query),
			zap.String("source", resp.Source))
		return jsonResult(resp), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "graph_status",
		Description: "Reports whether a graph is cached under the given idempotency key",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GraphStatusArgs) (*mcp.CallToolResult, any, error) {
		resp, qerr := s.dispatcher.Execute(ctx, &query.Request{
			Query:          query.TypeGraphStatus,
			IdempotencyKey: args.IdempotencyKey,
		}, nil)
		if qerr != nil {
			return jsonResultError(qerr), nil, nil
		}
		return jsonResult(resp), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "query_types",
		Description: "Lists every query type with its parameters and rollout phase",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args QueryTypesArgs) (*mcp.CallToolResult, any, error) {
		return jsonResult(query.Catalog()), nil, nil
	})
}

// jsonResultError encodes the error envelope as a failed tool result.
func jsonResultError(qerr *query.Error) *mcp.CallToolResult {
	data, err := json.MarshalIndent(errorEnvelope{Error: qerr}, "", "  ")
	if err != nil {
		return errorResult(qerr.Error())
	}
	return errorResult(string(data))
}
