package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"taskdoc/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for taskdoc.
// It exposes tools, resources, and prompts so AI agents can read and write
// task descriptions as block documents.
type Server struct {
	mcp   *server.MCPServer
	tasks *service.TaskService
	log   *slog.Logger
}

// Deps holds all dependencies passed from the app layer to the MCP server.
type Deps struct {
	Tasks   *service.TaskService
	Logger  *slog.Logger
	Version string
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}
	s := &Server{
		tasks: deps.Tasks,
		log:   deps.Logger.With("component", "mcp"),
	}

	s.mcp = server.NewMCPServer(
		"taskdoc-mcp",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerTaskTools()
	s.registerDescriptionTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}
