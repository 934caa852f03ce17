package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/flowactivate/internal/session"
	"github.com/ziadkadry99/flowactivate/internal/sfcli"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes org listing and flow activation
// to AI agents. It never prompts; callers name orgs and flows explicitly.
type Server struct {
	dir sfcli.Directory
	act session.Activator
	mcp *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(dir sfcli.Directory, act session.Activator) *Server {
	s := &Server{
		dir: dir,
		act: act,
	}

	s.mcp = server.NewMCPServer(
		"flowactivate",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(listConnectedOrgsTool, s.handleListConnectedOrgs)
	s.mcp.AddTool(activateFlowTool, s.handleActivateFlow)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
