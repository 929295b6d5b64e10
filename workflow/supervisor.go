package workflow

import (
	"context"
)

// Supervisor is the legacy default strategy used when the domain declares no
// recognized workflow type: a single turn of the domain's default agent.
type Supervisor struct{}

// Name implements Strategy.
func (Supervisor) Name() string { return "supervisor" }

// Execute implements Strategy.
func (Supervisor) Execute(ctx context.Context, t *Turn) (*Result, error) {
	cfg := t.Config

	if !cfg.HasAgent(cfg.DefaultAgentID) {
		return nil, cfg.ConfigErr("default_agent_id", "unknown agent %q", cfg.DefaultAgentID)
	}

	res := newResult(Supervisor{}.Name())

	steps, _, err := t.runStep(ctx, cfg.DefaultAgentID, t.Request, StepPipeline)
	res.record(steps...)

	if err != nil {
		if isCancellation(err) {
			res.cancel()
		} else {
			res.fail()
		}
		return res, err
	}

	return res, nil
}
