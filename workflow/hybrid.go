package workflow

import (
	"context"

	"github.com/turnflow/turnflow/core"
	"github.com/turnflow/turnflow/domain"
)

// Hybrid executes the domain's named phases strictly in declared order. Each
// phase runs as a transient, scoped Pipeline or Handoff sub-strategy over an
// agent set restricted to the phase (explicit members for pipeline phases,
// role-filtered for handoff phases), with the transcript threaded from one
// phase into the next. Handoff phases share one limiter for the whole turn.
type Hybrid struct{}

// Name implements Strategy.
func (Hybrid) Name() string { return "hybrid" }

// Execute implements Strategy.
func (Hybrid) Execute(ctx context.Context, t *Turn) (*Result, error) {
	cfg := t.Config

	if len(cfg.Phases) == 0 {
		return nil, cfg.ConfigErr("phases", "hybrid workflow requires at least one phase")
	}

	// Scope every phase up front so a malformed phase fails the turn before
	// any agent is invoked.
	scoped := make([]*domain.Config, len(cfg.Phases))
	for i, phase := range cfg.Phases {
		sub, err := phaseConfig(cfg, phase)
		if err != nil {
			return nil, err
		}
		scoped[i] = sub
	}

	lim := t.limiter()
	res := newResult(Hybrid{}.Name())

	for i, phase := range cfg.Phases {
		sub := &Turn{
			ConversationID: t.ConversationID,
			TurnID:         t.TurnID,
			Request:        t.Request,
			Config:         scoped[i],
			Invoker:        t.Invoker,
			Tools:          t.Tools,
			Emit:           t.Emit,
			Logger:         t.Logger,
			Transcript:     t.Transcript,
			Limiter:        lim,
		}

		pres, err := Select(scoped[i]).Execute(ctx, sub)
		t.Transcript = sub.Transcript

		if pres != nil {
			for _, s := range pres.Steps {
				s.Phase = phase.Name
				res.record(s)
			}
		}
		res.HandoffCount = lim.Count()

		if err != nil {
			if isCancellation(err) {
				res.cancel()
				return res, err
			}
			if !phase.ContinueOnError {
				res.fail()
				return res, err
			}
			t.flog().Warn("phase failed, continuing", "phase", phase.Name, "error", err)
			continue
		}

		if pres.Truncated {
			// The handoff bound is per turn: once a phase hits it, later
			// handoff phases would refuse every transfer anyway.
			res.truncate(pres.TruncationReason)
			return res, nil
		}
	}

	return res, nil
}

// phaseConfig builds the transient scoped configuration one phase executes
// under. Pipeline phases keep the parent agent set and run the phase members
// in order. Handoff phases restrict the agent set to the phase's roles (the
// domain fallback agent stands in when no agent carries them), start at the
// phase's start agent, and keep only the routing rules that target agents
// inside the restricted set.
func phaseConfig(cfg *domain.Config, phase domain.Phase) (*domain.Config, error) {
	switch phase.Mode {
	case domain.PhaseModePipeline:
		return &domain.Config{
			Name:            cfg.Name,
			Agents:          cfg.Agents,
			DefaultAgentID:  cfg.DefaultAgentID,
			Workflow:        domain.WorkflowPipeline,
			Pipeline:        phase.Agents,
			MaxRetries:      cfg.MaxRetries,
			ContinueOnError: phase.ContinueOnError,
		}, nil

	case domain.PhaseModeHandoff:
		agents := cfg.AgentsWithRoles(phase.Roles)
		if len(agents) == 0 {
			fb, ok := cfg.Agent(cfg.FallbackAgentID)
			if !ok {
				return nil, cfg.ConfigErr("phases",
					"phase %q matches no agents and no fallback agent is configured", phase.Name)
			}
			agents = []core.Agent{fb}
		}

		start := phase.StartAgentID
		if start == "" {
			start = agents[0].ID
			for _, a := range agents {
				if a.ID == cfg.DefaultAgentID {
					start = cfg.DefaultAgentID
					break
				}
			}
		} else if !hasAgent(agents, start) {
			return nil, cfg.ConfigErr("phases",
				"phase %q start agent %q does not carry the phase roles", phase.Name, start)
		}

		var rules []domain.RoutingRule
		for _, r := range cfg.Rules {
			if hasAgent(agents, r.TargetAgentID) {
				rules = append(rules, r)
			}
		}

		return &domain.Config{
			Name:            cfg.Name,
			Agents:          agents,
			Rules:           rules,
			DefaultAgentID:  start,
			Workflow:        domain.WorkflowHandoff,
			MaxHandoffs:     cfg.MaxHandoffs,
			MaxIterations:   cfg.MaxIterations,
			MaxRetries:      cfg.MaxRetries,
			ContinueOnError: phase.ContinueOnError,
		}, nil

	default:
		return nil, cfg.ConfigErr("phases", "phase %q has unknown mode %q", phase.Name, phase.Mode)
	}
}

func hasAgent(agents []core.Agent, id string) bool {
	for _, a := range agents {
		if a.ID == id {
			return true
		}
	}
	return false
}
