// Package anthropic backs agent invocations with the Anthropic Messages
// API. The adapter sends the agent's instructions plus the directive
// contract as the system prompt, the transcript-prefixed task as the user
// message, and maps tool-use blocks back into handoff and tool-call
// directives.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/turnflow/turnflow/core"
	"github.com/turnflow/turnflow/model"
)

// Options configure the Anthropic invoker adapter.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	// Instructions maps agent ids to their system instructions.
	Instructions map[string]string
}

// Invoker implements core.Invoker over the Anthropic Messages API.
type Invoker struct {
	client *anthropic.Client
	opts   Options
}

// New creates an invoker using the official client.
func New(optFns ...func(o *Options)) *Invoker {
	opts := defaultOptions(optFns)

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Invoker{client: &client, opts: opts}
}

// NewFromClient creates an invoker from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Invoker {
	return &Invoker{client: client, opts: defaultOptions(optFns)}
}

func defaultOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Invoke implements core.Invoker. API failures are classified transient so
// the engine's retry policy applies; malformed responses are fatal.
func (i *Invoker) Invoke(ctx context.Context, agentID, task string, transcript core.Transcript) (*core.Output, error) {
	params := anthropic.MessageNewParams{
		Model:       i.opts.Model,
		MaxTokens:   i.opts.MaxTokens,
		Temperature: anthropic.Float(i.opts.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: model.SystemPrompt(agentID, i.opts.Instructions[agentID])},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(model.UserContent(task, transcript))),
		},
		Tools: buildTools(model.DirectiveTools()),
	}

	resp, err := i.client.Messages.New(ctx, params)
	if err != nil {
		return nil, core.NewTransientInvocationError(agentID, fmt.Errorf("anthropic api error: %w", err))
	}

	out := &core.Output{}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			textBlock := block.AsText()
			if out.Text != "" && textBlock.Text != "" {
				out.Text += "\n"
			}
			out.Text += textBlock.Text
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := ""
			if toolBlock.Input != nil {
				if argsBytes, merr := json.Marshal(toolBlock.Input); merr == nil {
					args = string(argsBytes)
				}
			}
			handoff, toolCall, perr := model.ParseDirective(toolBlock.Name, args)
			if perr != nil {
				return nil, core.NewFatalInvocationError(agentID, perr)
			}
			if handoff != nil && out.Handoff == nil {
				out.Handoff = handoff
			}
			if toolCall != nil && out.ToolCall == nil {
				out.ToolCall = toolCall
			}
		}
	}

	return out, nil
}

// buildTools converts the directive definitions into Anthropic tool params.
func buildTools(defs []model.ToolDefinition) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, len(defs))
	for i, def := range defs {
		schema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if props, ok := def.Parameters["properties"]; ok {
			schema.Properties = props
		}
		if req, ok := def.Parameters["required"].([]string); ok {
			schema.Required = req
		}
		tools[i] = anthropic.ToolUnionParamOfTool(schema, def.Name)
	}
	return tools
}
