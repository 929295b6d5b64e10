package model

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/turnflow/turnflow/core"
	"github.com/turnflow/turnflow/logging"
)

// BreakerOptions configures the circuit breaker around an invoker.
type BreakerOptions struct {
	// Name identifies the breaker in logs.
	Name string
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before a half-open probe.
	Timeout time.Duration
	// Interval is the cyclic period of the closed state for clearing failure counts.
	Interval time.Duration
	// Logger receives state-change notifications.
	Logger logging.Logger
}

// BreakerInvoker wraps a core.Invoker with circuit breaker protection. When
// the backend fails repeatedly the circuit opens and calls fail fast as
// transient invocation errors, so the strategies' retry and continuation
// policies apply without hammering a struggling provider.
type BreakerInvoker struct {
	inner   core.Invoker
	breaker *gobreaker.CircuitBreaker[*core.Output]
}

// NewBreakerInvoker wraps inner with a circuit breaker.
func NewBreakerInvoker(inner core.Invoker, optFns ...func(o *BreakerOptions)) *BreakerInvoker {
	opts := BreakerOptions{
		Name:        "invoker",
		MaxFailures: 5,
		Timeout:     30 * time.Second,
		Interval:    60 * time.Second,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cb := gobreaker.NewCircuitBreaker[*core.Output](gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Interval:    opts.Interval,
		Timeout:     opts.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			opts.Logger.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &BreakerInvoker{inner: inner, breaker: cb}
}

// Invoke implements core.Invoker. Calls are routed through the breaker; an
// open circuit surfaces as a transient invocation error.
func (b *BreakerInvoker) Invoke(ctx context.Context, agentID, task string, transcript core.Transcript) (*core.Output, error) {
	out, err := b.breaker.Execute(func() (*core.Output, error) {
		return b.inner.Invoke(ctx, agentID, task, transcript)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, core.NewTransientInvocationError(agentID, err)
		}
		return nil, err
	}
	return out, nil
}

// State returns the current breaker state for monitoring.
func (b *BreakerInvoker) State() gobreaker.State {
	return b.breaker.State()
}
