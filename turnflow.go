// Package turnflow provides a high-level façade over the runner and the
// domain, workflow and approval packages, enabling rapid construction of
// multi-agent conversation systems. Most applications interact with this
// package by:
//  1. Creating a TurnFlow via New() with a model invoker (optionally
//     supplying a tool executor and overriding defaults)
//  2. Loading or building one or more domain configurations
//  3. Running turns asynchronously (Run) or synchronously (RunSync) and,
//     when tools are in play, deciding pending tool runs (Approve/Reject)
//
// The façade delegates orchestration to runner.Runner while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a structured logger
// and a metrics collector.
package turnflow

import (
	"context"
	"io"
	"time"

	"github.com/turnflow/turnflow/approval"
	"github.com/turnflow/turnflow/core"
	"github.com/turnflow/turnflow/domain"
	"github.com/turnflow/turnflow/history"
	"github.com/turnflow/turnflow/logging"
	"github.com/turnflow/turnflow/metrics"
	"github.com/turnflow/turnflow/runner"
	"github.com/turnflow/turnflow/workflow"
)

// Options configures the TurnFlow instance.
type Options struct {
	// MaxConcurrentTurns limits how many turns may execute simultaneously.
	// This prevents resource exhaustion and provides backpressure.
	MaxConcurrentTurns int64

	// EventBufferSize sets the channel buffer size for event delivery.
	// Larger buffers reduce blocking but increase memory usage.
	EventBufferSize int

	// ApprovalTimeout bounds how long a turn waits for a pending tool run
	// to be decided before it fails the request.
	ApprovalTimeout time.Duration

	// Executor performs approved tool runs. When nil, tool-call directives
	// are annotated in the trace instead of executed.
	Executor core.ToolExecutor

	// History persists transcripts and turn records across turns of a
	// conversation (defaults to an in-memory store).
	History history.Store

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger

	// Metrics is optional turn/step instrumentation.
	Metrics *metrics.Collector
}

// TurnFlow is the high-level façade aggregating the underlying runner and
// approval gate.
type TurnFlow struct {
	opts   Options
	runner *runner.Runner
}

// New creates a new TurnFlow instance over the given invoker with optional
// overrides.
func New(invoker core.Invoker, optFns ...func(o *Options)) *TurnFlow {
	opts := Options{
		MaxConcurrentTurns: 10,
		EventBufferSize:    100,
		ApprovalTimeout:    workflow.DefaultApprovalTimeout,
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	r := runner.New(invoker, func(o *runner.Options) {
		o.MaxConcurrentTurns = opts.MaxConcurrentTurns
		o.EventBufferSize = opts.EventBufferSize
		o.ApprovalTimeout = opts.ApprovalTimeout
		o.Executor = opts.Executor
		o.History = opts.History
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
	})

	return &TurnFlow{opts: opts, runner: r}
}

// Run starts an asynchronous turn returning the turn id, an event stream and
// an outcome channel carrying exactly one terminal result.
func (t *TurnFlow) Run(ctx context.Context, req runner.TurnRequest) (string, <-chan core.Event, <-chan runner.Outcome, error) {
	return t.runner.Run(ctx, req)
}

// RunSync is a synchronous helper that drains the event stream and returns
// the terminal result.
func (t *TurnFlow) RunSync(ctx context.Context, req runner.TurnRequest) (*workflow.Result, error) {
	return t.runner.RunSync(ctx, req)
}

// Cancel cancels a running turn by id.
func (t *TurnFlow) Cancel(turnID string) error { return t.runner.Cancel(turnID) }

// Approve marks a pending tool run as approved on behalf of the given role.
func (t *TurnFlow) Approve(runID, approverRole string) (*approval.Run, error) {
	return t.runner.Gate().Approve(runID, approverRole)
}

// Reject marks a pending tool run as rejected on behalf of the given role.
func (t *TurnFlow) Reject(runID, rejectorRole, reason string) (*approval.Run, error) {
	return t.runner.Gate().Reject(runID, rejectorRole, reason)
}

// ToolRuns returns the tool runs recorded for a conversation, oldest first.
func (t *TurnFlow) ToolRuns(conversationID string) []*approval.Run {
	return t.runner.Gate().List(conversationID)
}

// History exposes the conversation history store.
func (t *TurnFlow) History() history.Store { return t.runner.History() }

// LoadDomain parses a domain configuration from YAML and validates it.
func LoadDomain(r io.Reader) (*domain.Config, error) {
	return domain.Load(r)
}
