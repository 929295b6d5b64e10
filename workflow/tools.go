package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/turnflow/turnflow/approval"
	"github.com/turnflow/turnflow/core"
)

// DefaultApprovalTimeout bounds how long a step waits for a human decision
// on a pending tool run.
const DefaultApprovalTimeout = 5 * time.Minute

// ToolBrokerOptions configures a ToolBroker.
type ToolBrokerOptions struct {
	// Timeout bounds the wait for an approval decision. Zero or negative
	// falls back to DefaultApprovalTimeout.
	Timeout time.Duration

	// ExecutorRole is stamped on execution-outcome transitions.
	ExecutorRole string
}

// ToolBroker turns an agent's tool-call directive into an approval-gated
// tool run: it opens the run, suspends the step until a decision arrives,
// and on approval executes the tool and records the outcome on the gate.
type ToolBroker struct {
	gate     *approval.Gate
	executor core.ToolExecutor
	timeout  time.Duration
	role     string
}

// NewToolBroker creates a broker over the given gate and executor.
func NewToolBroker(gate *approval.Gate, executor core.ToolExecutor, optFns ...func(o *ToolBrokerOptions)) *ToolBroker {
	opts := ToolBrokerOptions{
		Timeout:      DefaultApprovalTimeout,
		ExecutorRole: "system",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultApprovalTimeout
	}

	return &ToolBroker{
		gate:     gate,
		executor: executor,
		timeout:  opts.Timeout,
		role:     opts.ExecutorRole,
	}
}

// Gate exposes the underlying approval gate so callers can deliver
// approve/reject decisions for runs the broker opened.
func (b *ToolBroker) Gate() *approval.Gate { return b.gate }

// run opens a tool run for the directive, waits for the decision and, when
// approved, executes the tool and records the outcome. The returned step
// carries the tool run id; its error field is set on rejection, timeout and
// execution failure.
func (b *ToolBroker) run(ctx context.Context, t *Turn, agentID string, call *core.ToolCall) (Step, error) {
	run := b.gate.Request(call.ToolID, t.ConversationID, call.Params, agentID)

	ev := t.event(agentID, core.EventToolRequested)
	ev.ToolRunID = run.ID
	ev.Message = call.ToolID
	t.emit(ev)
	t.flog().LogToolRun(run.ID, call.ToolID, string(run.Status))

	step := Step{
		AgentID:   agentID,
		Task:      call.ToolID,
		Kind:      StepTool,
		ToolRunID: run.ID,
		Timestamp: time.Now().UTC(),
	}

	decided, err := b.gate.Await(ctx, run.ID, b.timeout)
	if err != nil {
		step.Err = err.Error()
		b.resolve(t, agentID, run.ID, statusOf(decided), err)
		return step, fmt.Errorf("tool run %s: %w", run.ID, err)
	}

	result, execErr := b.executor.Execute(ctx, call.ToolID, call.Params)
	if execErr != nil {
		failed, recordErr := b.gate.RecordFailure(run.ID, b.role, execErr)
		if recordErr != nil {
			execErr = fmt.Errorf("%w (outcome not recorded: %v)", execErr, recordErr)
		}
		step.Err = execErr.Error()
		b.resolve(t, agentID, run.ID, statusOf(failed), execErr)
		return step, fmt.Errorf("tool %s execution: %w", call.ToolID, execErr)
	}

	executed, recordErr := b.gate.RecordExecution(run.ID, b.role, result)
	if recordErr != nil {
		step.Err = recordErr.Error()
		b.resolve(t, agentID, run.ID, "", recordErr)
		return step, recordErr
	}

	text := fmt.Sprintf("%v", result)
	step.Output = &core.Output{Text: text}
	t.Transcript = t.Transcript.AppendOutput("tool:"+call.ToolID, text)
	b.resolve(t, agentID, run.ID, statusOf(executed), nil)

	return step, nil
}

func (b *ToolBroker) resolve(t *Turn, agentID, runID, status string, err error) {
	ev := t.event(agentID, core.EventToolResolved)
	ev.ToolRunID = runID
	ev.Message = status
	if err != nil {
		ev.Err = err.Error()
	}
	t.emit(ev)
	t.flog().LogToolRun(runID, "", status)
}

func statusOf(run *approval.Run) string {
	if run == nil {
		return ""
	}
	return string(run.Status)
}
