package workflow

import (
	"context"

	"github.com/turnflow/turnflow/core"
	"github.com/turnflow/turnflow/routing"
)

// Handoff executes a decision-driven chain: the starting agent is resolved
// through the domain's routing rules (falling back to the default agent when
// nothing matches), and after each step the agent's own handoff directive
// decides who runs next. The chain ends naturally when an agent emits no
// directive, or is truncated when the handoff or iteration limit is hit.
type Handoff struct{}

// Name implements Strategy.
func (Handoff) Name() string { return "handoff" }

// Execute implements Strategy.
func (Handoff) Execute(ctx context.Context, t *Turn) (*Result, error) {
	cfg := t.Config
	lim := t.limiter()

	current, err := routing.New(cfg).Resolve(t.Request)
	if err != nil {
		return nil, err
	}

	res := newResult(Handoff{}.Name())
	var note string

	for iteration := 0; ; iteration++ {
		if max := cfg.IterationLimit(); max > 0 && iteration >= max {
			res.truncate(TruncationIterationLimit)
			res.HandoffCount = lim.Count()
			return res, nil
		}

		steps, out, err := t.runStep(ctx, current, t.Request, StepHandoff)
		if note != "" {
			steps[0].Note = note
			note = ""
		}
		res.record(steps...)

		if err != nil {
			res.HandoffCount = lim.Count()
			if isCancellation(err) {
				res.cancel()
				return res, err
			}
			if !cfg.ContinueOnError {
				res.fail()
				return res, err
			}
			// No directive is available from a failed step, so the chain ends
			// with the best response recorded so far.
			return res, nil
		}

		if out.Handoff == nil {
			res.HandoffCount = lim.Count()
			return res, nil
		}

		target := out.Handoff.TargetAgentID
		if !cfg.HasAgent(target) {
			failure := &routing.FailureError{TargetAgentID: target, FallbackAgentID: cfg.DefaultAgentID}
			t.flog().Warn("invalid handoff target", "from", current, "target", target)
			note = failure.Error()
			target = cfg.DefaultAgentID
		}

		if !lim.TryAdvance() {
			res.truncate(TruncationHandoffLimit)
			res.HandoffCount = lim.Count()
			return res, nil
		}

		ev := t.event(current, core.EventHandoff)
		ev.Message = target
		t.emit(ev)
		t.flog().LogHandoff(current, target, out.Handoff.Reason)

		current = target
	}
}
