package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/turnflow/turnflow/core"
)

// ScriptedInvoker is a core.Invoker whose responses are scripted per agent.
// Each invocation of an agent consumes the next queued response for it; the
// last response is repeated once the queue is exhausted. Call order is
// recorded for assertions. Safe for concurrent use.
type ScriptedInvoker struct {
	mu      sync.Mutex
	scripts map[string][]scripted
	calls   []string
}

type scripted struct {
	out *core.Output
	err error
}

// NewScriptedInvoker creates an empty scripted invoker. Invoking an agent
// with no script fails the call.
func NewScriptedInvoker() *ScriptedInvoker {
	return &ScriptedInvoker{scripts: make(map[string][]scripted)}
}

// Reply queues a plain-text response for the agent (chainable).
func (s *ScriptedInvoker) Reply(agentID, text string) *ScriptedInvoker {
	return s.Respond(agentID, &core.Output{Text: text})
}

// HandoffTo queues a response that hands the turn to target (chainable).
func (s *ScriptedInvoker) HandoffTo(agentID, text, target string) *ScriptedInvoker {
	return s.Respond(agentID, &core.Output{
		Text:    text,
		Handoff: &core.Handoff{TargetAgentID: target},
	})
}

// CallTool queues a response that requests a tool run (chainable).
func (s *ScriptedInvoker) CallTool(agentID, text, toolID string, params map[string]any) *ScriptedInvoker {
	return s.Respond(agentID, &core.Output{
		Text:     text,
		ToolCall: &core.ToolCall{ToolID: toolID, Params: params},
	})
}

// Respond queues a full output for the agent (chainable).
func (s *ScriptedInvoker) Respond(agentID string, out *core.Output) *ScriptedInvoker {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[agentID] = append(s.scripts[agentID], scripted{out: out})
	return s
}

// Fail queues an error response for the agent (chainable).
func (s *ScriptedInvoker) Fail(agentID string, err error) *ScriptedInvoker {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[agentID] = append(s.scripts[agentID], scripted{err: err})
	return s
}

// Invoke implements core.Invoker.
func (s *ScriptedInvoker) Invoke(ctx context.Context, agentID, task string, transcript core.Transcript) (*core.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, agentID)

	queue := s.scripts[agentID]
	if len(queue) == 0 {
		return nil, fmt.Errorf("no scripted response for agent %q", agentID)
	}

	next := queue[0]
	if len(queue) > 1 {
		s.scripts[agentID] = queue[1:]
	}

	if next.err != nil {
		return nil, next.err
	}

	return next.out, nil
}

// Calls returns the agent ids invoked so far, in order.
func (s *ScriptedInvoker) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CallCount returns how many times the agent was invoked.
func (s *ScriptedInvoker) CallCount(agentID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, id := range s.calls {
		if id == agentID {
			n++
		}
	}
	return n
}
