package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/turnflow/turnflow/core"
)

// runStep executes one agent invocation, including the approval-gated tool
// run its output may request. It returns the recorded steps (one agent step,
// plus one tool step when a tool call was made), the agent output, and the
// step error if the invocation or the tool run failed. Successful outputs
// are appended to the turn transcript before returning.
func (t *Turn) runStep(ctx context.Context, agentID, task string, kind StepKind) ([]Step, *core.Output, error) {
	t.emit(t.event(agentID, core.EventStepStarted))

	start := time.Now()
	out, err := t.invokeWithRetry(ctx, agentID, task)
	dur := time.Since(start)
	t.flog().LogStep(agentID, dur, err)

	step := Step{
		AgentID:   agentID,
		Task:      task,
		Kind:      kind,
		Timestamp: time.Now().UTC(),
	}

	if err != nil {
		step.Err = err.Error()
		ev := t.event(agentID, core.EventStepCompleted)
		ev.Err = err.Error()
		t.emit(ev)
		return []Step{step}, nil, err
	}

	step.Output = out
	t.Transcript = t.Transcript.AppendOutput(agentID, out.Text)

	ev := t.event(agentID, core.EventStepCompleted)
	ev.Message = out.Text
	t.emit(ev)

	steps := []Step{step}

	if out.ToolCall != nil {
		if t.Tools == nil {
			steps[0].Note = "tool call " + out.ToolCall.ToolID + " ignored: no tool broker configured"
			t.flog().Warn("tool call ignored", "agent_id", agentID, "tool_id", out.ToolCall.ToolID)
			return steps, out, nil
		}
		toolStep, toolErr := t.Tools.run(ctx, t, agentID, out.ToolCall)
		steps = append(steps, toolStep)
		if toolErr != nil {
			return steps, out, toolErr
		}
	}

	return steps, out, nil
}

// invokeWithRetry calls the invoker, retrying transient failures up to the
// domain's retry bound. Fatal failures and cancellation return immediately.
func (t *Turn) invokeWithRetry(ctx context.Context, agentID, task string) (*core.Output, error) {
	retries := t.Config.RetryLimit()

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := t.Invoker.Invoke(ctx, agentID, task, t.Transcript)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !core.IsTransient(err) || ctx.Err() != nil {
			break
		}
		if attempt < retries {
			t.flog().Warn("retrying transient invocation failure",
				"agent_id", agentID, "attempt", attempt+1, "error", err)
		}
	}

	return nil, lastErr
}

// isCancellation reports whether err stems from context cancellation or a
// context deadline.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
