package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/turnflow/turnflow/core"
)

// Directive tool names exposed to generation providers.
const (
	TransferToAgentTool = "transfer_to_agent"
	RequestToolTool     = "request_tool"
)

// ToolDefinition is a provider-neutral function tool description. Adapters
// translate it into their SDK's tool parameter type.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// DirectiveTools returns the two function tools every adapter exposes so the
// model can hand the turn to another agent or request a gated tool run.
func DirectiveTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        TransferToAgentTool,
			Description: "Transfer the current conversation turn to another agent.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"target_agent_id": map[string]any{
						"type":        "string",
						"description": "Identifier of the agent to hand the turn to.",
					},
					"reason": map[string]any{
						"type":        "string",
						"description": "Short reason for the transfer.",
					},
				},
				"required": []string{"target_agent_id"},
			},
		},
		{
			Name:        RequestToolTool,
			Description: "Request execution of a side-effecting tool. The run is held for human approval before anything executes.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"tool_id": map[string]any{
						"type":        "string",
						"description": "Identifier of the tool to run.",
					},
					"params": map[string]any{
						"type":        "object",
						"description": "Tool parameters.",
					},
				},
				"required": []string{"tool_id"},
			},
		},
	}
}

// ParseDirective interprets one provider tool call. The directive tools map
// to a handoff or a tool-call directive; any other tool name is treated as a
// direct tool request with the call's arguments as parameters.
func ParseDirective(name, argsJSON string) (*core.Handoff, *core.ToolCall, error) {
	args := map[string]any{}
	if strings.TrimSpace(argsJSON) != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return nil, nil, fmt.Errorf("tool call %s has malformed arguments: %w", name, err)
		}
	}

	switch name {
	case TransferToAgentTool:
		target, _ := args["target_agent_id"].(string)
		if target == "" {
			return nil, nil, fmt.Errorf("%s call names no target agent", TransferToAgentTool)
		}
		reason, _ := args["reason"].(string)
		return &core.Handoff{TargetAgentID: target, Reason: reason}, nil, nil

	case RequestToolTool:
		toolID, _ := args["tool_id"].(string)
		if toolID == "" {
			return nil, nil, fmt.Errorf("%s call names no tool", RequestToolTool)
		}
		params, _ := args["params"].(map[string]any)
		return nil, &core.ToolCall{ToolID: toolID, Params: params}, nil

	default:
		return nil, &core.ToolCall{ToolID: name, Params: args}, nil
	}
}

// SystemPrompt composes the instruction block an adapter sends as the system
// message: the agent's own instructions plus the directive contract.
func SystemPrompt(agentID, instructions string) string {
	var b strings.Builder
	if instructions != "" {
		b.WriteString(instructions)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "You are the agent %q in a multi-agent conversation.\n", agentID)
	b.WriteString("Use the transfer_to_agent tool to hand the turn to a better-suited agent.\n")
	b.WriteString("Use the request_tool tool for any side-effecting action; a human approves each run before it executes.\n")
	b.WriteString("Otherwise answer the task directly.")
	return b.String()
}

// UserContent renders the task sent as the user message, prefixing it with
// the accumulated transcript so every agent sees the full upstream trace.
func UserContent(task string, transcript core.Transcript) string {
	if transcript.Len() == 0 {
		return task
	}
	return "Conversation so far:\n" + transcript.Render() + "\nTask: " + task
}
