package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c := NewCollector(func(o *Options) {
		o.Registerer = reg
	})
	return c, reg
}

func TestRecordTurn(t *testing.T) {
	c, reg := newTestCollector(t)

	c.RecordTurn("support", "handoff", "completed", 250*time.Millisecond)
	c.RecordTurn("support", "handoff", "completed", 100*time.Millisecond)
	c.RecordTurn("support", "pipeline", "truncated", time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(
		c.turnsTotal.WithLabelValues("support", "handoff", "completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.turnsTotal.WithLabelValues("support", "pipeline", "truncated")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["turnflow_turns_total"])
	assert.True(t, names["turnflow_turn_duration_seconds"])
}

func TestRecordStepHandoffAndToolRun(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordStep("support", "empath", "ok")
	c.RecordStep("support", "empath", "error")
	c.RecordHandoff("support")
	c.RecordToolRun("support", "executed")
	c.RecordToolRun("support", "rejected")

	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.stepsTotal.WithLabelValues("support", "empath", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.handoffsTotal.WithLabelValues("support")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.toolRunsTotal.WithLabelValues("support", "executed")))
}

func TestCustomNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(func(o *Options) {
		o.Namespace = "acme"
		o.Registerer = reg
	})

	c.RecordHandoff("support")

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == "acme_handoffs_total" {
			found = true
		}
	}
	assert.True(t, found)
}
