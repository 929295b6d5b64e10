package workflow

import (
	"context"

	"github.com/turnflow/turnflow/core"
	"github.com/turnflow/turnflow/domain"
	"github.com/turnflow/turnflow/logging"
)

// Strategy is one of the closed set of control-flow algorithms that execute
// a conversation turn. Implementations are stateless values; all per-turn
// state lives in the Turn.
type Strategy interface {
	// Name returns the strategy identifier recorded on results and events.
	Name() string
	// Execute runs the turn to completion. It returns a Result whenever any
	// trace exists, possibly alongside an error: configuration errors carry
	// a nil Result, step failures and cancellation carry the partial trace.
	Execute(ctx context.Context, t *Turn) (*Result, error)
}

// Turn carries everything one strategy execution needs. A Turn is owned by a
// single goroutine for its whole execution; the engine never shares a Turn
// across conversation turns.
type Turn struct {
	ConversationID string
	TurnID         string
	Request        string

	Config  *domain.Config
	Invoker core.Invoker

	// Tools is optional. When nil, tool-call directives are recorded as trace
	// notes instead of opening approval-gated runs.
	Tools *ToolBroker

	// Emit is optional; nil means no observer.
	Emit core.EmitFunc

	// Logger is optional; nil falls back to a no-op logger.
	Logger *logging.FlowLogger

	// Transcript accumulates agent outputs across steps and, for the hybrid
	// strategy, across phase boundaries.
	Transcript core.Transcript

	// Limiter bounds handoffs for the whole turn. Lazily created from the
	// domain config when nil; the hybrid strategy shares one limiter across
	// all of its phases.
	Limiter *HandoffLimiter
}

func (t *Turn) emit(ev core.Event) {
	if t.Emit != nil {
		t.Emit(ev)
	}
}

func (t *Turn) event(agentID string, kind core.EventKind) core.Event {
	return core.NewEvent(t.ConversationID, t.TurnID, agentID, kind)
}

func (t *Turn) flog() *logging.FlowLogger {
	if t.Logger == nil {
		t.Logger = logging.NewFlowLogger(logging.NoOpLogger{}).WithTurn(t.ConversationID, t.TurnID)
	}
	return t.Logger
}

func (t *Turn) limiter() *HandoffLimiter {
	if t.Limiter == nil {
		t.Limiter = NewHandoffLimiter(t.Config.HandoffLimit())
	}
	return t.Limiter
}

// Select maps the domain's workflow type to its strategy. Unrecognized or
// absent values resolve to the legacy Supervisor strategy; strict validation
// happens in domain.Config.Validate, not here. Select is a pure function and
// safe to call concurrently.
func Select(cfg *domain.Config) Strategy {
	switch cfg.Workflow {
	case domain.WorkflowPipeline:
		return Pipeline{}
	case domain.WorkflowHandoff:
		return Handoff{}
	case domain.WorkflowHybrid:
		return Hybrid{}
	default:
		return Supervisor{}
	}
}
