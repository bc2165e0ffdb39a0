// Package toolserver implements the "tavern" MCP server the supervisor's
// QuerySpec advertises to the runtime: two tools, summon_servitor and
// dismiss_servitor, backed by a Spawner. Grounded on the teacher's
// pkg/mcpserver/calculator MCP-server-construction pattern.
package toolserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/loupgaroublond/tavern/internal/agentcore"
)

// Name is the tool-server's registered name, advertised in the
// Supervisor's QuerySpec.ToolServers.
const Name = "tavern"

// Spawner is the subset of *spawner.Spawner the tool-server needs.
// Declared locally to avoid an import cycle (spawner does not depend on
// toolserver).
type Spawner interface {
	Summon(ctx context.Context, assignment string) (*agentcore.Servitor, error)
	SummonNamed(ctx context.Context, name, assignment string) (*agentcore.Servitor, error)
	Dismiss(id string) error
}

// New creates the MCP server exposing summon_servitor and
// dismiss_servitor, dispatching to sp.
func New(sp Spawner) *server.MCPServer {
	s := server.NewMCPServer(Name, "1.0.0", server.WithToolCapabilities(true))

	summonTool := mcp.NewTool("summon_servitor",
		mcp.WithDescription("Summons a new servitor agent, optionally with an assignment and a caller-chosen name"),
		mcp.WithString("assignment", mcp.Description("The task to assign the new servitor; omit to summon an idle servitor")),
		mcp.WithString("name", mcp.Description("A caller-chosen display name; omit to auto-generate one")),
	)
	s.AddTool(summonTool, summonHandler(sp))

	dismissTool := mcp.NewTool("dismiss_servitor",
		mcp.WithDescription("Dismisses a servitor agent by id, removing it from the registry"),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("The uuid of the servitor to dismiss")),
	)
	s.AddTool(dismissTool, dismissHandler(sp))

	return s
}

func summonHandler(sp Spawner) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		assignment, _ := args["assignment"].(string)
		name, hasName := args["name"].(string)

		var sv *agentcore.Servitor
		var err error
		if hasName && name != "" {
			sv, err = sp.SummonNamed(ctx, name, assignment)
		} else {
			sv, err = sp.Summon(ctx, assignment)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("summon failed: %v", err)), nil
		}

		return toolResultJSON(map[string]any{
			"agent_id":   sv.ID(),
			"agent_name": sv.Name(),
		})
	}
}

func dismissHandler(sp Spawner) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		agentID, _ := args["agent_id"].(string)
		if agentID == "" {
			return mcp.NewToolResultError("agent_id is required"), nil
		}

		if err := sp.Dismiss(agentID); err != nil {
			return toolResultJSON(map[string]any{"ok": false})
		}

		return toolResultJSON(map[string]any{"ok": true})
	}
}

// toolResultJSON encodes result as JSON text, the runtime's way of
// threading structured tool output back into the agent's turn.
func toolResultJSON(result map[string]any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
