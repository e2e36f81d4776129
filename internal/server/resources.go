package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"codeatlas/internal/query"
)

const usageGuidelines = `# CodeAtlas

CodeAtlas answers structured questions about a previously analyzed codebase.
Call the ` + "`query`" + ` tool with a query type from the ` + "`query_types`" + ` catalog and
the idempotency key of the analyzed snapshot. On the first query for a key,
attach the raw graph snapshot in the ` + "`graph`" + ` argument so it can be indexed;
a CACHE_MISS error means the same request should be resubmitted with the
snapshot attached.

List-shaped results are paginated: ` + "`page.hasMore`" + ` reports that the limit was
reached while scanning, not an exact remaining count.
`

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "codeatlas://usage-guidelines",
		Name:        "Usage Guidelines",
		Description: "Usage guidelines for the CodeAtlas MCP server",
		MIMEType:    "text/markdown",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      "codeatlas://usage-guidelines",
					MIMEType: "text/markdown",
					Text:     usageGuidelines,
				},
			},
		}, nil
	})

	catalogJSON, _ := json.MarshalIndent(query.Catalog(), "", "  ")
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "codeatlas://queries",
		Name:        "Query Catalog",
		Description: "Every query type with its required/optional parameters and rollout phase",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      "codeatlas://queries",
					MIMEType: "application/json",
					Text:     string(catalogJSON),
				},
			},
		}, nil
	})

	// Build a map of tool name -> schema JSON for dynamic dispatch.
	schemaMap := buildSchemaMap()

	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "codeatlas://schemas/{tool_name}",
		Name:        "Tool Schema",
		Description: "JSON schema for the named tool's arguments",
		MIMEType:    "application/schema+json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := req.Params.URI
		toolName := strings.TrimPrefix(uri, "codeatlas://schemas/")
		schemaJSON, ok := schemaMap[toolName]
		if !ok {
			return nil, fmt.Errorf("unknown tool schema: %q", toolName)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/schema+json",
					Text:     schemaJSON,
				},
			},
		}, nil
	})
}

// buildSchemaMap constructs a map from tool name to its JSON schema string.
// Schemas are derived from the args structs using jsonschema inference.
func buildSchemaMap() map[string]string {
	m := make(map[string]string)
	addSchema[QueryArgs](m, "query")
	addSchema[GraphStatusArgs](m, "graph_status")
	addSchema[QueryTypesArgs](m, "query_types")
	return m
}

func addSchema[T any](m map[string]string, name string) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return
	}
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return
	}
	m[name] = string(schemaJSON)
}
