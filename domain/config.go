package domain

import (
	"github.com/turnflow/turnflow/core"
)

// Default bounds applied when the corresponding Config field is zero.
const (
	// DefaultMaxHandoffs bounds agent-to-agent transfers per turn.
	DefaultMaxHandoffs = 5
	// DefaultMaxIterations bounds total agent invocations per turn for
	// decision-driven strategies.
	DefaultMaxIterations = 20
	// DefaultMaxRetries bounds retries of transient invocation failures.
	DefaultMaxRetries = 1
)

// WorkflowType selects which workflow strategy executes a domain's turns.
type WorkflowType string

const (
	// WorkflowPipeline runs a fixed, ordered agent sequence.
	WorkflowPipeline WorkflowType = "pipeline"
	// WorkflowHandoff runs decision-driven agent-to-agent transfers.
	WorkflowHandoff WorkflowType = "handoff"
	// WorkflowHybrid runs named phases, each in pipeline or handoff mode.
	WorkflowHybrid WorkflowType = "hybrid"
	// WorkflowSupervisor is the legacy single-agent fallback. Unrecognized
	// or absent workflow types resolve to it.
	WorkflowSupervisor WorkflowType = "supervisor"
)

// RoutingRule maps a keyword set to a target agent. Lower priority numbers
// take precedence; ties resolve to the earliest-declared rule.
type RoutingRule struct {
	Keywords      []string `json:"keywords" yaml:"keywords"`
	TargetAgentID string   `json:"target_agent_id" yaml:"target_agent_id"`
	Priority      int      `json:"priority" yaml:"priority"`
}

// PhaseMode selects the sub-strategy a hybrid phase runs under.
type PhaseMode string

const (
	// PhaseModePipeline runs the phase as a fixed sub-pipeline.
	PhaseModePipeline PhaseMode = "pipeline"
	// PhaseModeHandoff runs the phase as a decision-driven sub-handoff.
	PhaseModeHandoff PhaseMode = "handoff"
)

// Phase is one named stage of a hybrid workflow. Pipeline-mode phases list
// their agent order in Agents; handoff-mode phases restrict the agent set to
// the given Roles and optionally name a StartAgentID.
type Phase struct {
	Name            string    `json:"name" yaml:"name"`
	Mode            PhaseMode `json:"mode" yaml:"mode"`
	Agents          []string  `json:"agents,omitempty" yaml:"agents,omitempty"`
	Roles           []string  `json:"roles,omitempty" yaml:"roles,omitempty"`
	StartAgentID    string    `json:"start_agent_id,omitempty" yaml:"start_agent_id,omitempty"`
	ContinueOnError bool      `json:"continue_on_error,omitempty" yaml:"continue_on_error,omitempty"`
}

// Config groups everything one conversational domain needs: its agents,
// routing rules, workflow selection and bounds. A Config is immutable for
// the duration of one execution.
type Config struct {
	Name string `json:"name" yaml:"name"`

	// Agents available in this domain, in declaration order. Order matters:
	// it is the deterministic tie-break for role filtering.
	Agents []core.Agent `json:"agents" yaml:"agents"`

	// Rules route a turn's input keywords to a starting agent.
	Rules []RoutingRule `json:"rules,omitempty" yaml:"rules,omitempty"`

	// DefaultAgentID receives turns no rule matched. Required.
	DefaultAgentID string `json:"default_agent_id" yaml:"default_agent_id"`

	// FallbackAgentID is the optional stand-in used when a hybrid phase's
	// role filter selects no agents.
	FallbackAgentID string `json:"fallback_agent_id,omitempty" yaml:"fallback_agent_id,omitempty"`

	// Workflow selects the strategy; unrecognized values fall back to the
	// supervisor legacy default.
	Workflow WorkflowType `json:"workflow" yaml:"workflow"`

	// Pipeline is the fixed agent order for pipeline workflows.
	Pipeline []string `json:"pipeline,omitempty" yaml:"pipeline,omitempty"`

	// Phases lay out hybrid workflows in execution order.
	Phases []Phase `json:"phases,omitempty" yaml:"phases,omitempty"`

	// MaxHandoffs bounds agent-to-agent transfers per turn (0 = default 5).
	MaxHandoffs int `json:"max_handoffs,omitempty" yaml:"max_handoffs,omitempty"`

	// MaxIterations bounds total agent invocations per turn for
	// decision-driven strategies (0 = default 20).
	MaxIterations int `json:"max_iterations,omitempty" yaml:"max_iterations,omitempty"`

	// MaxRetries bounds retries of transient invocation failures
	// (0 = default 1, negative = no retries).
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`

	// ContinueOnError lets a pipeline skip a failed step instead of
	// aborting the whole execution.
	ContinueOnError bool `json:"continue_on_error,omitempty" yaml:"continue_on_error,omitempty"`

	// AccessControl lists caller roles permitted to run this domain.
	// Empty means unrestricted.
	AccessControl []string `json:"access_control,omitempty" yaml:"access_control,omitempty"`
}

// Agent returns the declared agent with the given id.
func (c *Config) Agent(id string) (core.Agent, bool) {
	for _, a := range c.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return core.Agent{}, false
}

// HasAgent reports whether the domain declares an agent with the given id.
func (c *Config) HasAgent(id string) bool {
	_, ok := c.Agent(id)
	return ok
}

// AgentsWithRoles returns the agents carrying at least one of the given
// roles, preserving declaration order. An empty role list selects nothing.
func (c *Config) AgentsWithRoles(roles []string) []core.Agent {
	var out []core.Agent
	for _, a := range c.Agents {
		if a.HasAnyRole(roles) {
			out = append(out, a)
		}
	}
	return out
}

// HandoffLimit returns MaxHandoffs with the default applied.
func (c *Config) HandoffLimit() int {
	if c.MaxHandoffs <= 0 {
		return DefaultMaxHandoffs
	}
	return c.MaxHandoffs
}

// IterationLimit returns MaxIterations with the default applied.
func (c *Config) IterationLimit() int {
	if c.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return c.MaxIterations
}

// RetryLimit returns the retry bound for transient invocation failures:
// MaxRetries, defaulting to 1 when unset and clamping negatives to zero.
func (c *Config) RetryLimit() int {
	switch {
	case c.MaxRetries < 0:
		return 0
	case c.MaxRetries == 0:
		return DefaultMaxRetries
	default:
		return c.MaxRetries
	}
}

// Allows reports whether the caller role may run this domain. An empty
// access-control list admits every role.
func (c *Config) Allows(role string) bool {
	if len(c.AccessControl) == 0 {
		return true
	}
	for _, r := range c.AccessControl {
		if r == role {
			return true
		}
	}
	return false
}
