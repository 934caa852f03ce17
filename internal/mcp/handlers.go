package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/flowactivate/internal/session"
)

type orgSummary struct {
	Name        string `json:"name"`
	Username    string `json:"username"`
	InstanceURL string `json:"instanceUrl,omitempty"`
}

// handleListConnectedOrgs returns the connected orgs as JSON.
func (s *Server) handleListConnectedOrgs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orgs, err := s.dir.ListConnectedOrgs(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list orgs: %v", err)), nil
	}
	if len(orgs) == 0 {
		return mcp.NewToolResultText("No connected orgs. Authenticate one with `sf org login web`."), nil
	}

	out := make([]orgSummary, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, orgSummary{Name: o.Name(), Username: o.Username, InstanceURL: o.InstanceURL})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode orgs: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleActivateFlow activates each named flow in one org, in order, and
// reports one line per flow.
func (s *Server) handleActivateFlow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	org, err := request.RequireString("org")
	if err != nil || strings.TrimSpace(org) == "" {
		return mcp.NewToolResultError("missing required parameter: org"), nil
	}
	raw, err := request.RequireString("flows")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: flows"), nil
	}
	flows := session.ParseFlowNames(raw)
	if len(flows) == 0 {
		return mcp.NewToolResultError("flows must name at least one flow"), nil
	}

	cred, err := s.dir.ResolveCredential(ctx, org)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to resolve credentials: %v", err)), nil
	}

	var sb strings.Builder
	failed := 0
	for _, name := range flows {
		out := s.act.Activate(ctx, name, cred)
		if !out.OK() {
			failed++
		}
		fmt.Fprintf(&sb, "[%s] %s\n", org, out)
	}

	if failed > 0 {
		return mcp.NewToolResultError(sb.String()), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}
