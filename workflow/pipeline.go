package workflow

import (
	"context"
)

// Pipeline executes the domain's fixed agent order deterministically. Each
// agent receives the original request plus the accumulated transcript of all
// prior steps. Validation runs before any agent is invoked: a malformed
// pipeline never executes partially.
type Pipeline struct{}

// Name implements Strategy.
func (Pipeline) Name() string { return "pipeline" }

// Execute implements Strategy.
func (Pipeline) Execute(ctx context.Context, t *Turn) (*Result, error) {
	cfg := t.Config

	if len(cfg.Pipeline) == 0 {
		return nil, cfg.ConfigErr("pipeline", "pipeline workflow requires at least one agent")
	}
	for _, id := range cfg.Pipeline {
		if !cfg.HasAgent(id) {
			return nil, cfg.ConfigErr("pipeline", "pipeline references unknown agent %q", id)
		}
	}

	res := newResult(Pipeline{}.Name())

	for _, agentID := range cfg.Pipeline {
		steps, _, err := t.runStep(ctx, agentID, t.Request, StepPipeline)
		res.record(steps...)

		if err != nil {
			if isCancellation(err) {
				res.cancel()
				return res, err
			}
			if !cfg.ContinueOnError {
				res.fail()
				return res, err
			}
			// Skipped with the error marker already in the trace.
			continue
		}
	}

	return res, nil
}
