// Package mcpserver exposes the finance and company stores as MCP
// servers speaking JSON-RPC over stdio, so any MCP host (including our
// own client) can attach to them.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dkoh12/agenticai/internal/buildinfo"
)

// Server wraps an MCP server over one of the data stores.
type Server struct {
	server *server.MCPServer
}

// New creates an MCP server with the given name and tool set.
func New(name string, tools ...server.ServerTool) *Server {
	s := server.NewMCPServer(name, buildinfo.Version)
	s.AddTools(tools...)
	return &Server{server: s}
}

// Run serves MCP over stdio until stdin closes.
func (s *Server) Run() error {
	return server.ServeStdio(s.server)
}

func newServerTool(tool mcp.Tool, handler server.ToolHandlerFunc) server.ServerTool {
	return server.ServerTool{
		Tool:    tool,
		Handler: handler,
	}
}
