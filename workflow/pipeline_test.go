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

func pipelineConfig() *domain.Config {
	return testutil.NewConfigBuilder("build").
		Agent("planner").
		Agent("coder").
		Agent("tester").
		Agent("reviewer").
		Default("planner").
		Pipeline("planner", "coder", "tester", "reviewer").
		Build()
}

func newTurn(cfg *domain.Config, inv core.Invoker, request string) *Turn {
	return &Turn{
		ConversationID: "conv-1",
		TurnID:         core.NewID(),
		Request:        request,
		Config:         cfg,
		Invoker:        inv,
	}
}

func TestPipelineRunsAllStepsInOrder(t *testing.T) {
	inv := testutil.NewScriptedInvoker().
		Reply("planner", "plan ready").
		Reply("coder", "code written").
		Reply("tester", "tests green").
		Reply("reviewer", "approved")

	res, err := Pipeline{}.Execute(context.Background(), newTurn(pipelineConfig(), inv, "build the feature"))
	require.NoError(t, err)

	require.Len(t, res.Steps, 4)
	assert.Equal(t, []string{"planner", "coder", "tester", "reviewer"}, inv.Calls())
	for i, want := range []string{"planner", "coder", "tester", "reviewer"} {
		assert.Equal(t, want, res.Steps[i].AgentID)
		assert.Equal(t, StepPipeline, res.Steps[i].Kind)
	}
	assert.Equal(t, "approved", res.FinalResponse)
	assert.Equal(t, TerminationCompleted, res.Termination)
	assert.False(t, res.Truncated)
}

func TestPipelineAbortsOnFailureByDefault(t *testing.T) {
	inv := testutil.NewScriptedInvoker().
		Reply("planner", "plan ready").
		Fail("coder", core.NewFatalInvocationError("coder", errors.New("compiler on fire")))

	res, err := Pipeline{}.Execute(context.Background(), newTurn(pipelineConfig(), inv, "build"))
	require.Error(t, err)

	require.Len(t, res.Steps, 2)
	assert.Equal(t, "planner", res.Steps[0].AgentID)
	assert.Equal(t, "coder", res.Steps[1].AgentID)
	assert.NotEmpty(t, res.Steps[1].Err)
	assert.Equal(t, TerminationFailed, res.Termination)

	// Downstream agents were never invoked.
	assert.Zero(t, inv.CallCount("tester"))
	assert.Zero(t, inv.CallCount("reviewer"))
}

func TestPipelineContinueOnErrorSkipsFailedStep(t *testing.T) {
	cfg := pipelineConfig()
	cfg.ContinueOnError = true

	inv := testutil.NewScriptedInvoker().
		Reply("planner", "plan ready").
		Fail("coder", core.NewFatalInvocationError("coder", errors.New("boom"))).
		Reply("tester", "tests green").
		Reply("reviewer", "approved")

	res, err := Pipeline{}.Execute(context.Background(), newTurn(cfg, inv, "build"))
	require.NoError(t, err)

	require.Len(t, res.Steps, 4)
	assert.NotEmpty(t, res.Steps[1].Err)
	assert.Equal(t, "approved", res.FinalResponse)
	assert.Equal(t, TerminationCompleted, res.Termination)
}

func TestPipelineValidatesBeforeInvoking(t *testing.T) {
	cfg := pipelineConfig()
	cfg.Pipeline = []string{"planner", "ghost"}

	inv := testutil.NewScriptedInvoker().Reply("planner", "plan")

	res, err := Pipeline{}.Execute(context.Background(), newTurn(cfg, inv, "build"))
	assert.Nil(t, res)

	var cerr *domain.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Empty(t, inv.Calls(), "no agent may run on a malformed pipeline")
}

func TestPipelineRetriesTransientFailures(t *testing.T) {
	cfg := testutil.NewConfigBuilder("build").
		Agent("planner").
		Default("planner").
		Pipeline("planner").
		Build()

	inv := testutil.NewScriptedInvoker().
		Fail("planner", core.NewTransientInvocationError("planner", errors.New("rate limited"))).
		Reply("planner", "plan ready")

	res, err := Pipeline{}.Execute(context.Background(), newTurn(cfg, inv, "build"))
	require.NoError(t, err)

	assert.Equal(t, 2, inv.CallCount("planner"))
	assert.Equal(t, "plan ready", res.FinalResponse)
}

func TestPipelineDoesNotRetryFatalFailures(t *testing.T) {
	cfg := testutil.NewConfigBuilder("build").
		Agent("planner").
		Default("planner").
		Pipeline("planner").
		Build()

	inv := testutil.NewScriptedInvoker().
		Fail("planner", core.NewFatalInvocationError("planner", errors.New("bad prompt"))).
		Reply("planner", "never reached")

	_, err := Pipeline{}.Execute(context.Background(), newTurn(cfg, inv, "build"))
	require.Error(t, err)
	assert.Equal(t, 1, inv.CallCount("planner"))
}

func TestPipelineRetryBoundIsConfigurable(t *testing.T) {
	cfg := testutil.NewConfigBuilder("build").
		Agent("planner").
		Default("planner").
		Pipeline("planner").
		MaxRetries(2).
		Build()

	inv := testutil.NewScriptedInvoker().
		Fail("planner", core.NewTransientInvocationError("planner", errors.New("hiccup"))).
		Fail("planner", core.NewTransientInvocationError("planner", errors.New("hiccup"))).
		Reply("planner", "plan ready")

	res, err := Pipeline{}.Execute(context.Background(), newTurn(cfg, inv, "build"))
	require.NoError(t, err)
	assert.Equal(t, 3, inv.CallCount("planner"))
	assert.Equal(t, "plan ready", res.FinalResponse)
}

func TestPipelineCancellationMarksResult(t *testing.T) {
	cfg := pipelineConfig()

	ctx, cancel := context.WithCancel(context.Background())

	inv := core.InvokerFunc(func(ctx context.Context, agentID, task string, transcript core.Transcript) (*core.Output, error) {
		if agentID == "coder" {
			cancel()
			return nil, ctx.Err()
		}
		return &core.Output{Text: agentID + " done"}, nil
	})

	res, err := Pipeline{}.Execute(ctx, newTurn(cfg, inv, "build"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, TerminationCancelled, res.Termination)
	assert.Len(t, res.Steps, 2)
}

func TestPipelineAccumulatesContext(t *testing.T) {
	cfg := testutil.NewConfigBuilder("build").
		Agent("planner").
		Agent("coder").
		Default("planner").
		Pipeline("planner", "coder").
		Build()

	var seen core.Transcript
	inv := core.InvokerFunc(func(ctx context.Context, agentID, task string, transcript core.Transcript) (*core.Output, error) {
		if agentID == "coder" {
			seen = transcript
		}
		return &core.Output{Text: agentID + " output"}, nil
	})

	_, err := Pipeline{}.Execute(context.Background(), newTurn(cfg, inv, "build"))
	require.NoError(t, err)

	require.Equal(t, 1, seen.Len())
	last, ok := seen.Last()
	require.True(t, ok)
	assert.Equal(t, "planner", last.AgentID)
	assert.Equal(t, "planner output", last.Text)
}

func TestPipelineEmitsStepEvents(t *testing.T) {
	cfg := testutil.NewConfigBuilder("build").
		Agent("planner").
		Default("planner").
		Pipeline("planner").
		Build()

	inv := testutil.NewScriptedInvoker().Reply("planner", "done")

	var kinds []core.EventKind
	turn := newTurn(cfg, inv, "build")
	turn.Emit = func(ev core.Event) {
		assert.Equal(t, "conv-1", ev.ConversationID)
		assert.False(t, ev.Timestamp.IsZero())
		kinds = append(kinds, ev.Kind)
	}

	_, err := Pipeline{}.Execute(context.Background(), turn)
	require.NoError(t, err)
	assert.Equal(t, []core.EventKind{core.EventStepStarted, core.EventStepCompleted}, kinds)
}
