package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listConnectedOrgsTool defines the list_connected_orgs MCP tool.
var listConnectedOrgsTool = mcp.NewTool("list_connected_orgs",
	mcp.WithDescription("List the Salesforce orgs the local CLI is authenticated to and currently connected."),
)

// activateFlowTool defines the activate_flow MCP tool.
var activateFlowTool = mcp.NewTool("activate_flow",
	mcp.WithDescription("Activate the latest version of one or more flows in a connected org and verify the change."),
	mcp.WithString("org",
		mcp.Required(),
		mcp.Description("Alias (or username) of a connected org"),
	),
	mcp.WithString("flows",
		mcp.Required(),
		mcp.Description("Flow API names, separated by semicolons"),
	),
)
