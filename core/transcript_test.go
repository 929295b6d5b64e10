package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptAppendDoesNotMutateReceiver(t *testing.T) {
	base := NewTranscript()
	one := base.AppendOutput("planner", "plan drafted")
	two := one.AppendOutput("coder", "code written")

	assert.Equal(t, 0, base.Len())
	assert.Equal(t, 1, one.Len())
	assert.Equal(t, 2, two.Len())

	// Appending a sibling branch must not leak into the first branch.
	sibling := one.AppendOutput("tester", "tests green")
	assert.Equal(t, 2, sibling.Len())
	last, ok := two.Last()
	require.True(t, ok)
	assert.Equal(t, "coder", last.AgentID)
}

func TestTranscriptOrderPreserved(t *testing.T) {
	tr := NewTranscript().
		AppendOutput("a", "first").
		AppendOutput("b", "second").
		AppendOutput("c", "third")

	entries := tr.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{entries[0].AgentID, entries[1].AgentID, entries[2].AgentID})
}

func TestTranscriptEntriesReturnsCopy(t *testing.T) {
	tr := NewTranscript().AppendOutput("a", "first")
	entries := tr.Entries()
	entries[0].Text = "mutated"

	fresh := tr.Entries()
	assert.Equal(t, "first", fresh[0].Text)
}

func TestTranscriptRender(t *testing.T) {
	tr := NewTranscript().AppendOutput("planner", "step one").AppendOutput("coder", "step two")
	assert.Equal(t, "[planner] step one\n[coder] step two\n", tr.Render())

	assert.Empty(t, NewTranscript().Render())
}
