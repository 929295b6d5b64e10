// Package openai backs agent invocations with the OpenAI Chat Completions
// API. The adapter sends the agent's instructions plus the directive
// contract as the system message, the transcript-prefixed task as the user
// message, and maps returned tool calls back into handoff and tool-call
// directives.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/turnflow/turnflow/core"
	"github.com/turnflow/turnflow/model"
)

// Options configure the OpenAI invoker adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// Instructions maps agent ids to their system instructions. Agents
	// without an entry get only the generic directive contract.
	Instructions map[string]string
}

// Invoker implements core.Invoker over the OpenAI Chat Completions API.
type Invoker struct {
	client *openai.Client
	opts   Options
}

// New creates an invoker using a client configured from the environment.
func New(optFns ...func(o *Options)) *Invoker {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates an invoker from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Invoker {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Invoker{client: client, opts: opts}
}

// Invoke implements core.Invoker. API failures are classified transient so
// the engine's retry policy applies; malformed responses are fatal.
func (i *Invoker) Invoke(ctx context.Context, agentID, task string, transcript core.Transcript) (*core.Output, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(model.SystemPrompt(agentID, i.opts.Instructions[agentID])),
			openai.UserMessage(model.UserContent(task, transcript)),
		},
		Model:               i.opts.Model,
		Temperature:         openai.Float(i.opts.Temperature),
		MaxCompletionTokens: openai.Int(i.opts.MaxCompletionTokens),
		Tools:               buildTools(model.DirectiveTools()),
	}

	resp, err := i.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, core.NewTransientInvocationError(agentID, fmt.Errorf("openai api error: %w", err))
	}
	if len(resp.Choices) == 0 {
		return nil, core.NewFatalInvocationError(agentID, fmt.Errorf("no choices returned"))
	}

	msg := resp.Choices[0].Message
	out := &core.Output{Text: msg.Content}

	for _, tc := range msg.ToolCalls {
		handoff, toolCall, perr := model.ParseDirective(tc.Function.Name, tc.Function.Arguments)
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

	return out, nil
}

// buildTools converts the directive definitions into OpenAI tool parameters.
func buildTools(defs []model.ToolDefinition) []openai.ChatCompletionToolParam {
	tools := make([]openai.ChatCompletionToolParam, len(defs))
	for i, def := range defs {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  def.Parameters,
			},
		}
	}
	return tools
}
