package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/turnflow/turnflow/core"
)

// MockInvoker is a scripted core.Invoker for demos and tests. Responses are
// queued per agent and consumed in order; the last queued response repeats
// once the queue is exhausted. Safe for concurrent use.
type MockInvoker struct {
	mu        sync.Mutex
	responses map[string][]*core.Output
}

// NewMockInvoker creates an empty mock. Invoking an unscripted agent fails
// with a fatal invocation error.
func NewMockInvoker() *MockInvoker {
	return &MockInvoker{responses: make(map[string][]*core.Output)}
}

// Queue appends an output to the agent's response queue (chainable).
func (m *MockInvoker) Queue(agentID string, out *core.Output) *MockInvoker {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[agentID] = append(m.responses[agentID], out)
	return m
}

// QueueText appends a plain-text response (chainable).
func (m *MockInvoker) QueueText(agentID, text string) *MockInvoker {
	return m.Queue(agentID, &core.Output{Text: text})
}

// QueueHandoff appends a response that transfers the turn (chainable).
func (m *MockInvoker) QueueHandoff(agentID, text, target, reason string) *MockInvoker {
	return m.Queue(agentID, &core.Output{
		Text:    text,
		Handoff: &core.Handoff{TargetAgentID: target, Reason: reason},
	})
}

// QueueToolCall appends a response that requests a tool run (chainable).
func (m *MockInvoker) QueueToolCall(agentID, text, toolID string, params map[string]any) *MockInvoker {
	return m.Queue(agentID, &core.Output{
		Text:     text,
		ToolCall: &core.ToolCall{ToolID: toolID, Params: params},
	})
}

// Invoke implements core.Invoker.
func (m *MockInvoker) Invoke(ctx context.Context, agentID, task string, transcript core.Transcript) (*core.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	queue := m.responses[agentID]
	if len(queue) == 0 {
		return nil, core.NewFatalInvocationError(agentID, fmt.Errorf("no scripted response for agent %q", agentID))
	}

	next := queue[0]
	if len(queue) > 1 {
		m.responses[agentID] = queue[1:]
	}

	return next, nil
}
