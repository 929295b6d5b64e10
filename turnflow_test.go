package turnflow

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnflow/turnflow/approval"
	"github.com/turnflow/turnflow/core"
	"github.com/turnflow/turnflow/internal/testutil"
	"github.com/turnflow/turnflow/runner"
	"github.com/turnflow/turnflow/workflow"
)

func TestRunSyncPipeline(t *testing.T) {
	cfg := testutil.NewConfigBuilder("support").
		Agent("drafter").
		Agent("reviewer").
		Pipeline("drafter", "reviewer").
		Build()

	inv := testutil.NewScriptedInvoker().
		Reply("drafter", "draft").
		Reply("reviewer", "final answer")

	tf := New(inv)

	res, err := tf.RunSync(context.Background(), runner.TurnRequest{
		ConversationID: "conv-1",
		Domain:         cfg,
		Request:        "help me",
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, workflow.TerminationCompleted, res.Termination)
	assert.Equal(t, "final answer", res.FinalResponse)
	assert.Len(t, res.Steps, 2)
}

func TestRunStreamsEvents(t *testing.T) {
	cfg := testutil.NewConfigBuilder("support").
		Agent("solo").
		Default("solo").
		Build()

	inv := testutil.NewScriptedInvoker().Reply("solo", "done")

	tf := New(inv)

	turnID, events, outcome, err := tf.Run(context.Background(), runner.TurnRequest{
		ConversationID: "conv-1",
		Domain:         cfg,
		Request:        "hi",
	})
	require.NoError(t, err)
	require.NotEmpty(t, turnID)

	var kinds []core.EventKind
	for ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	out := <-outcome
	require.NoError(t, out.Err)

	require.NotEmpty(t, kinds)
	assert.Equal(t, core.EventTurnStarted, kinds[0])
	assert.Equal(t, core.EventTurnCompleted, kinds[len(kinds)-1])
}

func TestApproveRejectToolRuns(t *testing.T) {
	tf := New(testutil.NewScriptedInvoker())

	run := tf.runner.Gate().Request("search", "conv-9", map[string]any{"q": "go"}, "agent")

	approved, err := tf.Approve(run.ID, "supervisor")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, approved.Status)

	other := tf.runner.Gate().Request("delete", "conv-9", nil, "agent")
	rejected, err := tf.Reject(other.ID, "supervisor", "too risky")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusRejected, rejected.Status)

	runs := tf.ToolRuns("conv-9")
	require.Len(t, runs, 2)
	assert.Equal(t, "search", runs[0].ToolID)
	assert.Equal(t, "delete", runs[1].ToolID)
}

func TestLoadDomain(t *testing.T) {
	yml := `
name: billing
agents:
  - id: clerk
default_agent_id: clerk
`
	cfg, err := LoadDomain(strings.NewReader(yml))
	require.NoError(t, err)
	assert.Equal(t, "billing", cfg.Name)
	assert.Equal(t, "clerk", cfg.DefaultAgentID)
}
