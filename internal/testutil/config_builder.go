package testutil

import (
	"github.com/turnflow/turnflow/core"
	"github.com/turnflow/turnflow/domain"
)

// ConfigBuilder provides a fluent helper for constructing domain
// configurations in tests. Example:
//
//	cfg := NewConfigBuilder("support").
//		Agent("empath", "support").
//		Agent("comedian", "entertainment").
//		Default("empath").
//		Workflow(domain.WorkflowHandoff).
//		Build()
//
// Chain only the parts you need.
type ConfigBuilder struct {
	cfg domain.Config
}

// NewConfigBuilder creates a builder for a domain with the given name.
func NewConfigBuilder(name string) *ConfigBuilder {
	return &ConfigBuilder{cfg: domain.Config{Name: name}}
}

// Agent adds an agent with the given id and role tags (chainable).
func (b *ConfigBuilder) Agent(id string, roles ...string) *ConfigBuilder {
	b.cfg.Agents = append(b.cfg.Agents, core.Agent{ID: id, Name: id, Roles: roles})
	return b
}

// Rule appends a routing rule (chainable). Declaration order is preserved.
func (b *ConfigBuilder) Rule(target string, priority int, keywords ...string) *ConfigBuilder {
	b.cfg.Rules = append(b.cfg.Rules, domain.RoutingRule{
		Keywords:      keywords,
		TargetAgentID: target,
		Priority:      priority,
	})
	return b
}

// Default sets the default agent id (chainable).
func (b *ConfigBuilder) Default(id string) *ConfigBuilder {
	b.cfg.DefaultAgentID = id
	return b
}

// Fallback sets the fallback agent id (chainable).
func (b *ConfigBuilder) Fallback(id string) *ConfigBuilder {
	b.cfg.FallbackAgentID = id
	return b
}

// Workflow sets the workflow type (chainable).
func (b *ConfigBuilder) Workflow(wt domain.WorkflowType) *ConfigBuilder {
	b.cfg.Workflow = wt
	return b
}

// Pipeline sets the fixed agent order and the pipeline workflow type (chainable).
func (b *ConfigBuilder) Pipeline(agentIDs ...string) *ConfigBuilder {
	b.cfg.Workflow = domain.WorkflowPipeline
	b.cfg.Pipeline = agentIDs
	return b
}

// PipelinePhase appends a pipeline-mode phase and sets the hybrid workflow
// type (chainable).
func (b *ConfigBuilder) PipelinePhase(name string, agentIDs ...string) *ConfigBuilder {
	b.cfg.Workflow = domain.WorkflowHybrid
	b.cfg.Phases = append(b.cfg.Phases, domain.Phase{
		Name:   name,
		Mode:   domain.PhaseModePipeline,
		Agents: agentIDs,
	})
	return b
}

// HandoffPhase appends a handoff-mode phase restricted to the given roles
// and sets the hybrid workflow type (chainable).
func (b *ConfigBuilder) HandoffPhase(name string, roles ...string) *ConfigBuilder {
	b.cfg.Workflow = domain.WorkflowHybrid
	b.cfg.Phases = append(b.cfg.Phases, domain.Phase{
		Name:  name,
		Mode:  domain.PhaseModeHandoff,
		Roles: roles,
	})
	return b
}

// MaxHandoffs sets the handoff bound (chainable).
func (b *ConfigBuilder) MaxHandoffs(n int) *ConfigBuilder {
	b.cfg.MaxHandoffs = n
	return b
}

// MaxIterations sets the iteration cap (chainable).
func (b *ConfigBuilder) MaxIterations(n int) *ConfigBuilder {
	b.cfg.MaxIterations = n
	return b
}

// MaxRetries sets the transient-failure retry bound (chainable).
func (b *ConfigBuilder) MaxRetries(n int) *ConfigBuilder {
	b.cfg.MaxRetries = n
	return b
}

// ContinueOnError sets the failure continuation flag (chainable).
func (b *ConfigBuilder) ContinueOnError(v bool) *ConfigBuilder {
	b.cfg.ContinueOnError = v
	return b
}

// AccessControl sets the allowed caller roles (chainable).
func (b *ConfigBuilder) AccessControl(roles ...string) *ConfigBuilder {
	b.cfg.AccessControl = roles
	return b
}

// Build returns the assembled configuration.
func (b *ConfigBuilder) Build() *domain.Config {
	cfg := b.cfg
	return &cfg
}
