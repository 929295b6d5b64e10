package domain

import "fmt"

// ConfigurationError reports an invalid domain configuration. Configuration
// errors are fatal: they surface before any agent is invoked and never allow
// partial execution.
type ConfigurationError struct {
	Domain string
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Domain == "" {
		return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid configuration for domain %q: %s: %s", e.Domain, e.Field, e.Reason)
}

// ConfigErr builds a *ConfigurationError for the named field of this domain.
func (c *Config) ConfigErr(field, format string, args ...any) error {
	return &ConfigurationError{Domain: c.Name, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the structural invariants the engine relies on: every
// referenced agent id (default, fallback, pipeline entries, rule targets,
// phase members) must exist in the agent set, agent ids must be unique, and
// the phase layout must be well formed for hybrid workflows. It returns a
// *ConfigurationError describing the first violation found.
func (c *Config) Validate() error {
	if len(c.Agents) == 0 {
		return c.ConfigErr("agents", "at least one agent is required")
	}

	seen := make(map[string]struct{}, len(c.Agents))
	for i, a := range c.Agents {
		if a.ID == "" {
			return c.ConfigErr("agents", "agent at index %d has an empty id", i)
		}
		if _, dup := seen[a.ID]; dup {
			return c.ConfigErr("agents", "duplicate agent id %q", a.ID)
		}
		seen[a.ID] = struct{}{}
	}

	if c.DefaultAgentID == "" {
		return c.ConfigErr("default_agent_id", "default agent is required")
	}
	if !c.HasAgent(c.DefaultAgentID) {
		return c.ConfigErr("default_agent_id", "unknown agent %q", c.DefaultAgentID)
	}
	if c.FallbackAgentID != "" && !c.HasAgent(c.FallbackAgentID) {
		return c.ConfigErr("fallback_agent_id", "unknown agent %q", c.FallbackAgentID)
	}

	for i, r := range c.Rules {
		if len(r.Keywords) == 0 {
			return c.ConfigErr("rules", "rule %d has no keywords", i)
		}
		if !c.HasAgent(r.TargetAgentID) {
			return c.ConfigErr("rules", "rule %d targets unknown agent %q", i, r.TargetAgentID)
		}
	}

	if c.Workflow == WorkflowPipeline {
		if len(c.Pipeline) == 0 {
			return c.ConfigErr("pipeline", "pipeline workflow requires a non-empty pipeline")
		}
	}
	for i, id := range c.Pipeline {
		if !c.HasAgent(id) {
			return c.ConfigErr("pipeline", "step %d references unknown agent %q", i, id)
		}
	}

	if c.Workflow == WorkflowHybrid {
		if len(c.Phases) == 0 {
			return c.ConfigErr("phases", "hybrid workflow requires at least one phase")
		}
	}
	for i, p := range c.Phases {
		if p.Name == "" {
			return c.ConfigErr("phases", "phase %d has no name", i)
		}
		switch p.Mode {
		case PhaseModePipeline:
			if len(p.Agents) == 0 {
				return c.ConfigErr("phases", "pipeline phase %q lists no agents", p.Name)
			}
			for _, id := range p.Agents {
				if !c.HasAgent(id) {
					return c.ConfigErr("phases", "phase %q references unknown agent %q", p.Name, id)
				}
			}
		case PhaseModeHandoff:
			if len(p.Roles) == 0 {
				return c.ConfigErr("phases", "handoff phase %q lists no roles", p.Name)
			}
			if p.StartAgentID != "" && !c.HasAgent(p.StartAgentID) {
				return c.ConfigErr("phases", "phase %q names unknown start agent %q", p.Name, p.StartAgentID)
			}
		default:
			return c.ConfigErr("phases", "phase %q has unknown mode %q", p.Name, p.Mode)
		}
	}

	return nil
}
