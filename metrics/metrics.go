// Package metrics exposes Prometheus instrumentation for turn execution:
// step and handoff counters, tool-run outcomes and turn durations. The
// collector is optional; the engine works identically without one.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Options configures a Collector.
type Options struct {
	// Namespace prefixes every metric name.
	Namespace string
	// Registerer receives the collectors. Defaults to the global registerer.
	Registerer prometheus.Registerer
}

// Collector records turn-level execution metrics.
type Collector struct {
	turnsTotal    *prometheus.CounterVec
	turnDuration  *prometheus.HistogramVec
	stepsTotal    *prometheus.CounterVec
	handoffsTotal *prometheus.CounterVec
	toolRunsTotal *prometheus.CounterVec
}

// NewCollector creates and registers the engine's metric collectors.
func NewCollector(optFns ...func(o *Options)) *Collector {
	opts := Options{
		Namespace:  "turnflow",
		Registerer: prometheus.DefaultRegisterer,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	factory := promauto.With(opts.Registerer)

	return &Collector{
		turnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Name:      "turns_total",
				Help:      "Total number of executed conversation turns",
			},
			[]string{"domain", "strategy", "termination"},
		),
		turnDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: opts.Namespace,
				Name:      "turn_duration_seconds",
				Help:      "Conversation turn duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"domain", "strategy"},
		),
		stepsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Name:      "steps_total",
				Help:      "Total number of executed agent steps",
			},
			[]string{"domain", "agent_id", "status"},
		),
		handoffsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Name:      "handoffs_total",
				Help:      "Total number of agent-to-agent handoffs",
			},
			[]string{"domain"},
		),
		toolRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Name:      "tool_runs_total",
				Help:      "Total number of resolved tool runs",
			},
			[]string{"domain", "status"},
		),
	}
}

// RecordTurn records one completed turn.
func (c *Collector) RecordTurn(domain, strategy, termination string, dur time.Duration) {
	c.turnsTotal.WithLabelValues(domain, strategy, termination).Inc()
	c.turnDuration.WithLabelValues(domain, strategy).Observe(dur.Seconds())
}

// RecordStep records one executed agent step.
func (c *Collector) RecordStep(domain, agentID, status string) {
	c.stepsTotal.WithLabelValues(domain, agentID, status).Inc()
}

// RecordHandoff records one agent-to-agent transfer.
func (c *Collector) RecordHandoff(domain string) {
	c.handoffsTotal.WithLabelValues(domain).Inc()
}

// RecordToolRun records one resolved tool run with its final status.
func (c *Collector) RecordToolRun(domain, status string) {
	c.toolRunsTotal.WithLabelValues(domain, status).Inc()
}
