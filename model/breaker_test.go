package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnflow/turnflow/core"
)

func TestBreakerPassesThrough(t *testing.T) {
	inner := NewMockInvoker().QueueText("empath", "hello")
	b := NewBreakerInvoker(inner)

	out, err := b.Invoke(context.Background(), "empath", "greet", core.NewTranscript())
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Text)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	inner := core.InvokerFunc(func(ctx context.Context, agentID, task string, transcript core.Transcript) (*core.Output, error) {
		calls++
		return nil, errors.New("backend down")
	})

	b := NewBreakerInvoker(inner, func(o *BreakerOptions) {
		o.MaxFailures = 3
		o.Timeout = time.Minute
	})

	for i := 0; i < 3; i++ {
		_, err := b.Invoke(context.Background(), "empath", "x", core.NewTranscript())
		require.Error(t, err)
	}
	assert.Equal(t, 3, calls)
	assert.Equal(t, gobreaker.StateOpen, b.State())

	// The open circuit fails fast as a transient error without reaching the
	// backend, so the engine's retry policy applies.
	_, err := b.Invoke(context.Background(), "empath", "x", core.NewTranscript())
	require.Error(t, err)
	assert.True(t, core.IsTransient(err))
	assert.Equal(t, 3, calls)
}

func TestMockInvokerConsumesQueueInOrder(t *testing.T) {
	m := NewMockInvoker().
		QueueText("empath", "first").
		QueueHandoff("empath", "second", "comedian", "humor needed")

	out, err := m.Invoke(context.Background(), "empath", "t", core.NewTranscript())
	require.NoError(t, err)
	assert.Equal(t, "first", out.Text)
	assert.Nil(t, out.Handoff)

	out, err = m.Invoke(context.Background(), "empath", "t", core.NewTranscript())
	require.NoError(t, err)
	require.NotNil(t, out.Handoff)
	assert.Equal(t, "comedian", out.Handoff.TargetAgentID)

	// The last response repeats.
	out, err = m.Invoke(context.Background(), "empath", "t", core.NewTranscript())
	require.NoError(t, err)
	assert.Equal(t, "second", out.Text)
}

func TestMockInvokerUnscriptedAgentIsFatal(t *testing.T) {
	m := NewMockInvoker()

	_, err := m.Invoke(context.Background(), "ghost", "t", core.NewTranscript())
	require.Error(t, err)
	assert.False(t, core.IsTransient(err))
}
