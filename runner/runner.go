package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/turnflow/turnflow/approval"
	"github.com/turnflow/turnflow/core"
	"github.com/turnflow/turnflow/domain"
	"github.com/turnflow/turnflow/history"
	"github.com/turnflow/turnflow/logging"
	"github.com/turnflow/turnflow/metrics"
	"github.com/turnflow/turnflow/workflow"
)

// AccessDeniedError reports a caller role the domain's access-control list
// does not admit.
type AccessDeniedError struct {
	Domain string
	Role   string
}

// Error implements the error interface.
func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("role %q is not allowed to run turns in domain %q", e.Role, e.Domain)
}

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// MaxConcurrentTurns limits how many turns may execute at once.
	MaxConcurrentTurns int64
	// EventBufferSize sets channel buffering for events.
	EventBufferSize int
	// ApprovalTimeout bounds the wait for a tool-run decision.
	ApprovalTimeout time.Duration
	// ExecutorRole is stamped on tool-run execution outcomes.
	ExecutorRole string
	// Gate stores tool runs shared across turns.
	Gate *approval.Gate
	// Executor performs approved tool runs. When nil, tool-call directives
	// are annotated in the trace instead of executed.
	Executor core.ToolExecutor
	// History persists transcripts and turn records across turns of a
	// conversation (defaults to an in-memory store).
	History history.Store
	// Logging services.
	Logger logging.Logger
	// Metrics is optional turn/step instrumentation.
	Metrics *metrics.Collector
}

// TurnRequest describes one conversation turn to execute.
type TurnRequest struct {
	ConversationID string
	Domain         *domain.Config
	Request        string
	CallerRole     string
}

// Outcome is the terminal artifact of one turn delivered on the outcome
// channel. Result may carry a partial trace when Err is non-nil.
type Outcome struct {
	Result *workflow.Result
	Err    error
}

// Runner executes conversation turns. Public methods are safe for
// concurrent use.
type Runner struct {
	invoker core.Invoker

	eventBufferSize int
	gate            *approval.Gate
	broker          *workflow.ToolBroker
	history         history.Store
	logger          logging.Logger
	collector       *metrics.Collector
	sem             *semaphore.Weighted

	activeTurns map[string]context.CancelFunc
	mu          sync.Mutex
}

// New constructs a Runner over the given invoker with optional overrides.
func New(invoker core.Invoker, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxConcurrentTurns: 10,
		EventBufferSize:    100,
		ApprovalTimeout:    workflow.DefaultApprovalTimeout,
		ExecutorRole:       "system",
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Gate == nil {
		opts.Gate = approval.NewGate(func(o *approval.Options) {
			o.Logger = opts.Logger
		})
	}
	if opts.History == nil {
		opts.History = history.NewInMemoryStore()
	}

	r := &Runner{
		invoker:         invoker,
		eventBufferSize: opts.EventBufferSize,
		gate:            opts.Gate,
		history:         opts.History,
		logger:          opts.Logger,
		collector:       opts.Metrics,
		sem:             semaphore.NewWeighted(opts.MaxConcurrentTurns),
		activeTurns:     make(map[string]context.CancelFunc),
	}

	if opts.Executor != nil {
		r.broker = workflow.NewToolBroker(opts.Gate, opts.Executor, func(o *workflow.ToolBrokerOptions) {
			o.Timeout = opts.ApprovalTimeout
			o.ExecutorRole = opts.ExecutorRole
		})
	}

	return r
}

// Gate exposes the shared approval gate so callers can deliver approve and
// reject decisions and inspect pending tool runs.
func (r *Runner) Gate() *approval.Gate { return r.gate }

// History exposes the conversation history store.
func (r *Runner) History() history.Store { return r.history }

// Run starts an asynchronous turn. It validates the domain and the caller's
// access before anything executes, then streams progress events on the first
// channel and delivers exactly one Outcome on the second. Both channels are
// closed when the turn ends.
func (r *Runner) Run(ctx context.Context, req TurnRequest) (string, <-chan core.Event, <-chan Outcome, error) {
	if req.Domain == nil {
		return "", nil, nil, fmt.Errorf("turn request has no domain configuration")
	}
	if err := req.Domain.Validate(); err != nil {
		return "", nil, nil, err
	}
	if !req.Domain.Allows(req.CallerRole) {
		return "", nil, nil, &AccessDeniedError{Domain: req.Domain.Name, Role: req.CallerRole}
	}

	turnID := core.NewID()

	eventsCh := make(chan core.Event, r.eventBufferSize)
	outcomeCh := make(chan Outcome, 1)

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.activeTurns[turnID] = cancel
	r.mu.Unlock()

	go func() {
		defer func() {
			close(eventsCh)
			close(outcomeCh)
			r.mu.Lock()
			delete(r.activeTurns, turnID)
			r.mu.Unlock()
			cancel()
		}()

		res, err := r.executeTurn(ctx, req, turnID, eventsCh)
		outcomeCh <- Outcome{Result: res, Err: err}
	}()

	return turnID, eventsCh, outcomeCh, nil
}

// RunSync executes a turn and blocks until it completes, discarding the
// event stream.
func (r *Runner) RunSync(ctx context.Context, req TurnRequest) (*workflow.Result, error) {
	_, events, outcome, err := r.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	for range events {
	}

	out := <-outcome
	return out.Result, out.Err
}

// Cancel cancels a running turn by id.
func (r *Runner) Cancel(turnID string) error {
	r.mu.Lock()
	cancel, exists := r.activeTurns[turnID]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("turn %s not found", turnID)
	}

	cancel()

	return nil
}

func (r *Runner) executeTurn(ctx context.Context, req TurnRequest, turnID string, eventsCh chan<- core.Event) (*workflow.Result, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.sem.Release(1)

	flog := logging.NewFlowLogger(r.logger).WithTurn(req.ConversationID, turnID)

	emit := func(ev core.Event) {
		r.observe(req.Domain.Name, ev)
		select {
		case <-ctx.Done():
		case eventsCh <- ev:
		}
	}

	transcript, herr := r.history.Transcript(req.ConversationID)
	if herr != nil {
		flog.Warn("loading conversation transcript failed", "error", herr)
	}

	turn := &workflow.Turn{
		ConversationID: req.ConversationID,
		TurnID:         turnID,
		Request:        req.Request,
		Config:         req.Domain,
		Invoker:        r.invoker,
		Tools:          r.broker,
		Emit:           emit,
		Logger:         flog,
		Transcript:     transcript,
	}

	strategy := workflow.Select(req.Domain)

	emit(core.NewEvent(req.ConversationID, turnID, "", core.EventTurnStarted))

	start := time.Now()
	res, err := strategy.Execute(ctx, turn)
	dur := time.Since(start)

	flog.LogTurn(strategy.Name(), stepCount(res), dur, err)
	if r.collector != nil {
		r.collector.RecordTurn(req.Domain.Name, strategy.Name(), terminationOf(res, err), dur)
	}
	r.recordHistory(req.ConversationID, turnID, req.Request, turn, res, start, dur, err, flog)

	done := core.NewEvent(req.ConversationID, turnID, "", core.EventTurnCompleted)
	if err != nil {
		done.Err = err.Error()
	}
	// Deliver the terminal event even when ctx is already cancelled, so
	// observers always see the turn close.
	select {
	case eventsCh <- done:
	default:
	}

	return res, err
}

// recordHistory persists the turn's transcript and a summary record so later
// turns of the same conversation see the accumulated context.
func (r *Runner) recordHistory(conversationID, turnID, request string, turn *workflow.Turn, res *workflow.Result, start time.Time, dur time.Duration, err error, flog *logging.FlowLogger) {
	if serr := r.history.SaveTranscript(conversationID, turn.Transcript); serr != nil {
		flog.Warn("saving conversation transcript failed", "error", serr)
	}

	rec := history.Record{
		TurnID:      turnID,
		Request:     request,
		Termination: terminationOf(res, err),
		Steps:       stepCount(res),
		StartedAt:   start.UTC(),
		Duration:    dur,
	}
	if res != nil {
		rec.FinalResponse = res.FinalResponse
	}
	if err != nil {
		rec.Err = err.Error()
	}
	if aerr := r.history.Append(conversationID, rec); aerr != nil {
		flog.Warn("recording turn history failed", "error", aerr)
	}
}

// observe feeds step-level events into the metrics collector.
func (r *Runner) observe(domainName string, ev core.Event) {
	if r.collector == nil {
		return
	}

	switch ev.Kind {
	case core.EventStepCompleted:
		status := "ok"
		if ev.Err != "" {
			status = "error"
		}
		r.collector.RecordStep(domainName, ev.AgentID, status)
	case core.EventHandoff:
		r.collector.RecordHandoff(domainName)
	case core.EventToolResolved:
		status := ev.Message
		if status == "" {
			status = "unknown"
		}
		r.collector.RecordToolRun(domainName, status)
	}
}

func stepCount(res *workflow.Result) int {
	if res == nil {
		return 0
	}
	return len(res.Steps)
}

func terminationOf(res *workflow.Result, err error) string {
	if res != nil {
		return string(res.Termination)
	}
	if err != nil {
		return "error"
	}
	return string(workflow.TerminationCompleted)
}
