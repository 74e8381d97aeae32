package api

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/wdtsmap/pkg/kit"
)

// NewMCPServer creates an MCP server exposing the wdtsmap tools.
func NewMCPServer(svc *Service, logger *slog.Logger, version string) *server.MCPServer {
	srv := server.NewMCPServer("wdtsmap", version, server.WithToolCapabilities(false))
	RegisterMCPTools(srv, svc, logger)
	return srv
}

// RegisterMCPTools registers the three wdtsmap MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, svc *Service, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	eps := newEndpoints(svc, middleware(svc, logger))
	registerResolveInstitution(srv, eps.resolve)
	registerResolveBatch(srv, eps.resolveBatch)
	registerListLaboratories(srv, eps.listLabs)
}

func registerResolveInstitution(srv *server.MCPServer, ep kit.Endpoint) {
	tool := mcp.NewTool("resolve_institution",
		mcp.WithDescription("Resolve a participant's home institution name to an NCES postsecondary school record (name, city, state, coordinates)."),
		mcp.WithString("name", mcp.Required(), mcp.Description("The institution name as written in the participant report")),
		mcp.WithNumber("year", mcp.Description("Reference year of the school table (defaults to the current year)")),
	)

	kit.RegisterMCPTool(srv, tool, ep, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		name, _ := args["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("name is required")
		}
		return &kit.MCPDecodeResult{Request: &resolveReq{Name: name, Year: argYear(args)}}, nil
	})
}

func registerResolveBatch(srv *server.MCPServer, ep kit.Endpoint) {
	tool := mcp.NewTool("resolve_batch",
		mcp.WithDescription(fmt.Sprintf("Resolve up to %d institution names against one reference year.", MaxBatch)),
		mcp.WithString("names", mcp.Required(), mcp.Description("Semicolon-separated list of institution names")),
		mcp.WithNumber("year", mcp.Description("Reference year of the school table (defaults to the current year)")),
	)

	kit.RegisterMCPTool(srv, tool, ep, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		namesStr, _ := args["names"].(string)
		var names []string
		for _, n := range strings.Split(namesStr, ";") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		return &kit.MCPDecodeResult{Request: &resolveBatchReq{Names: names, Year: argYear(args)}}, nil
	})
}

func registerListLaboratories(srv *server.MCPServer, ep kit.Endpoint) {
	tool := mcp.NewTool("list_laboratories",
		mcp.WithDescription("List the host laboratories with their keys, aliases and coordinates."),
	)

	kit.RegisterMCPTool(srv, tool, ep, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}

// argYear reads an optional numeric year. JSON numbers arrive as float64.
func argYear(args map[string]any) int {
	switch v := args["year"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
