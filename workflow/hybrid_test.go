package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnflow/turnflow/core"
	"github.com/turnflow/turnflow/domain"
	"github.com/turnflow/turnflow/internal/testutil"
)

func hybridConfig() *domain.Config {
	return testutil.NewConfigBuilder("council").
		Agent("planner", "planning").
		Agent("comedian", "entertainment").
		Agent("philosopher", "wisdom").
		Agent("historian", "wisdom").
		Default("planner").
		PipelinePhase("planning", "planner").
		HandoffPhase("selection", "entertainment", "wisdom").
		Build()
}

func TestHybridRunsPhasesInDeclaredOrder(t *testing.T) {
	inv := testutil.NewScriptedInvoker().
		Reply("planner", "the plan").
		Reply("comedian", "the punchline")

	res, err := Hybrid{}.Execute(context.Background(), newTurn(hybridConfig(), inv, "entertain me"))
	require.NoError(t, err)

	require.Len(t, res.Steps, 2)
	assert.Equal(t, "planner", res.Steps[0].AgentID)
	assert.Equal(t, "planning", res.Steps[0].Phase)
	assert.Equal(t, "comedian", res.Steps[1].AgentID)
	assert.Equal(t, "selection", res.Steps[1].Phase)
	assert.Equal(t, "the punchline", res.FinalResponse)
	assert.Equal(t, TerminationCompleted, res.Termination)

	// Phase 1 completed before any phase 2 agent ran.
	assert.Equal(t, []string{"planner", "comedian"}, inv.Calls())
}

func TestHybridPhaseAgentSetExcludesUntaggedAgents(t *testing.T) {
	cfg := hybridConfig()

	// planner carries neither phase role; a handoff naming it must fall back
	// to the phase's own default rather than leave the role subset.
	inv := testutil.NewScriptedInvoker().
		Reply("planner", "the plan").
		HandoffTo("comedian", "try the planner", "planner").
		Reply("comedian", "fine, another joke")

	res, err := Hybrid{}.Execute(context.Background(), newTurn(cfg, inv, "entertain me"))
	require.NoError(t, err)

	for _, s := range res.Steps[1:] {
		agent, ok := cfg.Agent(s.AgentID)
		require.True(t, ok)
		assert.True(t, agent.HasAnyRole([]string{"entertainment", "wisdom"}),
			"phase 2 invoked %q which carries no permitted role", s.AgentID)
	}
}

func TestHybridThreadsTranscriptAcrossPhases(t *testing.T) {
	var phase2Transcript core.Transcript
	inv := core.InvokerFunc(func(ctx context.Context, agentID, task string, transcript core.Transcript) (*core.Output, error) {
		if agentID == "comedian" {
			phase2Transcript = transcript
		}
		return &core.Output{Text: agentID + " says hi"}, nil
	})

	_, err := Hybrid{}.Execute(context.Background(), newTurn(hybridConfig(), inv, "entertain me"))
	require.NoError(t, err)

	require.Equal(t, 1, phase2Transcript.Len())
	last, ok := phase2Transcript.Last()
	require.True(t, ok)
	assert.Equal(t, "planner", last.AgentID)
}

func TestHybridHandoffPhaseStartAgent(t *testing.T) {
	cfg := hybridConfig()
	cfg.Phases[1].StartAgentID = "philosopher"

	inv := testutil.NewScriptedInvoker().
		Reply("planner", "plan").
		Reply("philosopher", "wisdom dispensed")

	res, err := Hybrid{}.Execute(context.Background(), newTurn(cfg, inv, "go"))
	require.NoError(t, err)
	assert.Equal(t, []string{"planner", "philosopher"}, inv.Calls())
	assert.Equal(t, "wisdom dispensed", res.FinalResponse)
}

func TestHybridSharesHandoffLimitAcrossPhases(t *testing.T) {
	cfg := testutil.NewConfigBuilder("council").
		Agent("philosopher", "wisdom").
		Agent("historian", "wisdom").
		Default("philosopher").
		HandoffPhase("first", "wisdom").
		HandoffPhase("second", "wisdom").
		MaxHandoffs(2).
		Build()

	inv := testutil.NewScriptedInvoker().
		HandoffTo("philosopher", "ask the historian", "historian").
		HandoffTo("historian", "ask the philosopher", "philosopher")

	res, err := Hybrid{}.Execute(context.Background(), newTurn(cfg, inv, "go"))
	require.NoError(t, err)

	assert.True(t, res.Truncated)
	assert.Equal(t, TruncationHandoffLimit, res.TruncationReason)
	assert.Equal(t, 2, res.HandoffCount)
	// The second phase never ran: the turn ended when the shared bound was hit.
	require.NotEmpty(t, res.Steps)
	for _, s := range res.Steps {
		assert.Equal(t, "first", s.Phase)
	}
}

func TestHybridPhaseFailurePropagation(t *testing.T) {
	cfg := testutil.NewConfigBuilder("council").
		Agent("planner", "planning").
		Agent("reviewer", "review").
		Default("planner").
		PipelinePhase("planning", "planner").
		PipelinePhase("review", "reviewer").
		Build()

	inv := testutil.NewScriptedInvoker().
		Fail("planner", core.NewFatalInvocationError("planner", errors.New("no plan"))).
		Reply("reviewer", "nothing to review")

	res, err := Hybrid{}.Execute(context.Background(), newTurn(cfg, inv, "go"))
	require.Error(t, err)
	assert.Equal(t, TerminationFailed, res.Termination)
	assert.Zero(t, inv.CallCount("reviewer"))
}

func TestHybridNonCriticalPhaseFailureContinues(t *testing.T) {
	cfg := testutil.NewConfigBuilder("council").
		Agent("planner", "planning").
		Agent("reviewer", "review").
		Default("planner").
		PipelinePhase("planning", "planner").
		PipelinePhase("review", "reviewer").
		Build()
	cfg.Phases[0].ContinueOnError = true

	inv := testutil.NewScriptedInvoker().
		Fail("planner", core.NewFatalInvocationError("planner", errors.New("no plan"))).
		Reply("reviewer", "reviewed anyway")

	res, err := Hybrid{}.Execute(context.Background(), newTurn(cfg, inv, "go"))
	require.NoError(t, err)
	assert.Equal(t, "reviewed anyway", res.FinalResponse)
	assert.Equal(t, TerminationCompleted, res.Termination)
}

func TestHybridEmptyRoleFilterUsesFallbackAgent(t *testing.T) {
	cfg := testutil.NewConfigBuilder("council").
		Agent("planner", "planning").
		Agent("generalist").
		Default("planner").
		Fallback("generalist").
		HandoffPhase("selection", "nonexistent-role").
		Build()

	inv := testutil.NewScriptedInvoker().Reply("generalist", "covering the gap")

	res, err := Hybrid{}.Execute(context.Background(), newTurn(cfg, inv, "go"))
	require.NoError(t, err)
	assert.Equal(t, []string{"generalist"}, inv.Calls())
	assert.Equal(t, "covering the gap", res.FinalResponse)
}

func TestHybridEmptyRoleFilterWithoutFallbackFailsFast(t *testing.T) {
	cfg := testutil.NewConfigBuilder("council").
		Agent("planner", "planning").
		Default("planner").
		PipelinePhase("planning", "planner").
		HandoffPhase("selection", "nonexistent-role").
		Build()

	inv := testutil.NewScriptedInvoker().Reply("planner", "plan")

	res, err := Hybrid{}.Execute(context.Background(), newTurn(cfg, inv, "go"))
	assert.Nil(t, res)

	var cerr *domain.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	// Every phase is scoped before any agent is invoked.
	assert.Empty(t, inv.Calls())
}

func TestHybridWithoutPhasesIsConfigurationError(t *testing.T) {
	cfg := testutil.NewConfigBuilder("council").
		Agent("planner").
		Default("planner").
		Workflow(domain.WorkflowHybrid).
		Build()

	_, err := Hybrid{}.Execute(context.Background(), newTurn(cfg, testutil.NewScriptedInvoker(), "go"))

	var cerr *domain.ConfigurationError
	require.ErrorAs(t, err, &cerr)
}
