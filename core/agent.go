package core

import (
	"context"
	"errors"
	"fmt"
)

// Agent describes one task specialist available inside a domain. The engine
// treats agents as opaque capabilities: reasoning happens behind the Invoker
// collaborator, the descriptor only carries identity and role tags used for
// routing and phase filtering.
type Agent struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Roles       []string `json:"roles,omitempty" yaml:"roles,omitempty"`
}

// HasRole reports whether the agent is tagged with the given role.
func (a Agent) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the agent carries at least one of the given roles.
func (a Agent) HasAnyRole(roles []string) bool {
	for _, r := range roles {
		if a.HasRole(r) {
			return true
		}
	}
	return false
}

// Handoff is an agent's directive to transfer the current turn to another
// named agent.
type Handoff struct {
	TargetAgentID string `json:"target_agent_id"`
	Reason        string `json:"reason,omitempty"`
}

// ToolCall is an agent's directive to run a side-effecting tool. Execution
// never happens directly; the directive opens an approval-gated tool run
// (package approval) first.
type ToolCall struct {
	ToolID string         `json:"tool_id"`
	Params map[string]any `json:"params,omitempty"`
}

// Output is the structured result of one agent invocation. Text is always
// present on success; Handoff and ToolCall are optional directives the
// owning strategy interprets.
type Output struct {
	Text     string    `json:"text"`
	Handoff  *Handoff  `json:"handoff,omitempty"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
}

// Invoker is the external collaborator that performs the actual agent
// reasoning (typically an LLM call). Implementations must respect ctx
// cancellation and should classify failures via InvocationError so the
// engine can apply its retry policy.
type Invoker interface {
	Invoke(ctx context.Context, agentID, task string, transcript Transcript) (*Output, error)
}

// InvokerFunc adapts a plain function to the Invoker interface.
type InvokerFunc func(ctx context.Context, agentID, task string, transcript Transcript) (*Output, error)

// Invoke implements Invoker.
func (f InvokerFunc) Invoke(ctx context.Context, agentID, task string, transcript Transcript) (*Output, error) {
	return f(ctx, agentID, task, transcript)
}

// ToolExecutor is the external collaborator that performs an approved tool
// run. It is only ever called after the corresponding tool run reached the
// approved state.
type ToolExecutor interface {
	Execute(ctx context.Context, toolID string, params map[string]any) (any, error)
}

// ToolExecutorFunc adapts a plain function to the ToolExecutor interface.
type ToolExecutorFunc func(ctx context.Context, toolID string, params map[string]any) (any, error)

// Execute implements ToolExecutor.
func (f ToolExecutorFunc) Execute(ctx context.Context, toolID string, params map[string]any) (any, error) {
	return f(ctx, toolID, params)
}

// InvocationError classifies a failed agent invocation. Transient failures
// are retried by the owning strategy up to the domain's retry bound; fatal
// failures abort the step immediately.
type InvocationError struct {
	AgentID   string
	Transient bool
	Err       error
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	kind := "fatal"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s invocation error for agent %s: %v", kind, e.AgentID, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *InvocationError) Unwrap() error { return e.Err }

// NewTransientInvocationError wraps err as a retryable invocation failure.
func NewTransientInvocationError(agentID string, err error) *InvocationError {
	return &InvocationError{AgentID: agentID, Transient: true, Err: err}
}

// NewFatalInvocationError wraps err as a non-retryable invocation failure.
func NewFatalInvocationError(agentID string, err error) *InvocationError {
	return &InvocationError{AgentID: agentID, Transient: false, Err: err}
}

// IsTransient reports whether err is (or wraps) a transient InvocationError.
func IsTransient(err error) bool {
	var ie *InvocationError
	return errors.As(err, &ie) && ie.Transient
}
