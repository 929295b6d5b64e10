package approval

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/turnflow/turnflow/core"
	"github.com/turnflow/turnflow/logging"
)

// ErrNotFound is returned for operations on an unknown tool-run id.
var ErrNotFound = errors.New("tool run not found")

// ErrApprovalTimeout is returned by Await when the approval window elapses
// before a decision arrives. The run is moved to failed with a timeout
// reason, which keeps it distinguishable from an explicit rejection.
var ErrApprovalTimeout = errors.New("approval timed out")

// ErrRejected is returned by Await when the run was explicitly rejected.
var ErrRejected = errors.New("tool run rejected")

// InvalidTransitionError reports an illegal state change attempt. The gate
// leaves the run untouched; callers must treat this as a no-op with error.
type InvalidTransitionError struct {
	RunID string
	From  Status
	Op    string
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s tool run %s in state %s", e.Op, e.RunID, e.From)
}

// Options configures a Gate.
type Options struct {
	// Logger receives transition logs. Defaults to the no-op logger.
	Logger logging.Logger
}

// Gate is the in-memory approval store shared across concurrent turns,
// keyed by tool-run id. All transitions happen under one mutex, which gives
// the single-writer-per-run guarantee: of two racing approvals exactly one
// succeeds and the other receives an InvalidTransitionError.
type Gate struct {
	mu      sync.Mutex
	runs    map[string]*Run
	decided map[string]chan struct{}
	logger  logging.Logger
}

// NewGate constructs an empty gate.
func NewGate(optFns ...func(o *Options)) *Gate {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gate{
		runs:    make(map[string]*Run),
		decided: make(map[string]chan struct{}),
		logger:  opts.Logger,
	}
}

// Request creates a new run in pending_approval and returns a snapshot.
func (g *Gate) Request(toolID, conversationID string, params map[string]any, requestedBy string) *Run {
	run := &Run{
		ID:             core.NewID(),
		ToolID:         toolID,
		ConversationID: conversationID,
		Status:         StatusPendingApproval,
		RequestedBy:    requestedBy,
		RequestedAt:    time.Now().UTC(),
	}
	if params != nil {
		run.Params = make(map[string]any, len(params))
		maps.Copy(run.Params, params)
	}

	g.mu.Lock()
	g.runs[run.ID] = run
	g.decided[run.ID] = make(chan struct{})
	g.mu.Unlock()

	g.logger.Info("tool run requested", "tool_run_id", run.ID, "tool_id", toolID, "conversation_id", conversationID, "requested_by", requestedBy)

	return run.Clone()
}

// Approve moves a pending run to approved, stamping the approver role.
func (g *Gate) Approve(runID, approverRole string) (*Run, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	run, ok := g.runs[runID]
	if !ok {
		return nil, fmt.Errorf("approve %s: %w", runID, ErrNotFound)
	}
	if run.Status != StatusPendingApproval {
		return nil, &InvalidTransitionError{RunID: runID, From: run.Status, Op: "approve"}
	}

	now := time.Now().UTC()
	run.Status = StatusApproved
	run.ApprovedBy = approverRole
	run.DecidedAt = &now
	g.signalDecidedLocked(runID)

	g.logger.Info("tool run approved", "tool_run_id", runID, "approved_by", approverRole)

	return run.Clone(), nil
}

// Reject moves a pending run to rejected, stamping the rejector role and
// the rejection reason. Rejected is terminal.
func (g *Gate) Reject(runID, rejectorRole, reason string) (*Run, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	run, ok := g.runs[runID]
	if !ok {
		return nil, fmt.Errorf("reject %s: %w", runID, ErrNotFound)
	}
	if run.Status != StatusPendingApproval {
		return nil, &InvalidTransitionError{RunID: runID, From: run.Status, Op: "reject"}
	}

	now := time.Now().UTC()
	run.Status = StatusRejected
	run.RejectedBy = rejectorRole
	run.Reason = reason
	run.DecidedAt = &now
	run.ResolvedAt = &now
	g.signalDecidedLocked(runID)

	g.logger.Info("tool run rejected", "tool_run_id", runID, "rejected_by", rejectorRole, "reason", reason)

	return run.Clone(), nil
}

// RecordExecution moves an approved run to executed with its result payload.
func (g *Gate) RecordExecution(runID, executorRole string, result any) (*Run, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	run, ok := g.runs[runID]
	if !ok {
		return nil, fmt.Errorf("record execution %s: %w", runID, ErrNotFound)
	}
	if run.Status != StatusApproved {
		return nil, &InvalidTransitionError{RunID: runID, From: run.Status, Op: "record execution on"}
	}

	now := time.Now().UTC()
	run.Status = StatusExecuted
	run.ExecutedBy = executorRole
	run.Result = result
	run.ResolvedAt = &now

	g.logger.Info("tool run executed", "tool_run_id", runID, "executed_by", executorRole)

	return run.Clone(), nil
}

// RecordFailure moves an approved run to failed with the failure cause.
func (g *Gate) RecordFailure(runID, executorRole string, cause error) (*Run, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	run, ok := g.runs[runID]
	if !ok {
		return nil, fmt.Errorf("record failure %s: %w", runID, ErrNotFound)
	}
	if run.Status != StatusApproved {
		return nil, &InvalidTransitionError{RunID: runID, From: run.Status, Op: "record failure on"}
	}

	now := time.Now().UTC()
	run.Status = StatusFailed
	run.ExecutedBy = executorRole
	if cause != nil {
		run.Reason = cause.Error()
	}
	run.ResolvedAt = &now

	g.logger.Warn("tool run failed", "tool_run_id", runID, "executed_by", executorRole, "reason", run.Reason)

	return run.Clone(), nil
}

// Get returns a snapshot of the run with the given id.
func (g *Gate) Get(runID string) (*Run, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	run, ok := g.runs[runID]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", runID, ErrNotFound)
	}
	return run.Clone(), nil
}

// List returns snapshots of all runs belonging to a conversation, ordered
// by request time.
func (g *Gate) List(conversationID string) []*Run {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []*Run
	for _, run := range g.runs {
		if run.ConversationID == conversationID {
			out = append(out, run.Clone())
		}
	}
	sortRunsByRequestTime(out)
	return out
}

// Await suspends until the run's approve/reject decision arrives, the
// timeout elapses, or ctx is cancelled. It never polls: the decision is
// delivered through a per-run channel closed by the deciding transition.
//
// On timeout the run is expired to failed with a timeout reason (a
// gate-internal transition, still impossible for external callers) and
// ErrApprovalTimeout is returned alongside the final snapshot. On an
// explicit rejection ErrRejected is returned. A timeout of zero or less
// waits indefinitely (until ctx cancellation).
func (g *Gate) Await(ctx context.Context, runID string, timeout time.Duration) (*Run, error) {
	g.mu.Lock()
	run, ok := g.runs[runID]
	if !ok {
		g.mu.Unlock()
		return nil, fmt.Errorf("await %s: %w", runID, ErrNotFound)
	}
	if run.Status.Decided() {
		snapshot := run.Clone()
		g.mu.Unlock()
		return snapshot, awaitOutcome(snapshot)
	}
	ch := g.decided[runID]
	g.mu.Unlock()

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-ch:
		snapshot, err := g.Get(runID)
		if err != nil {
			return nil, err
		}
		return snapshot, awaitOutcome(snapshot)
	case <-timer:
		return g.expire(runID)
	}
}

// expire moves a still-pending run to failed with a timeout reason. If a
// decision raced in just before the timer fired, the decision wins and the
// run is treated as decided.
func (g *Gate) expire(runID string) (*Run, error) {
	g.mu.Lock()
	run, ok := g.runs[runID]
	if !ok {
		g.mu.Unlock()
		return nil, fmt.Errorf("expire %s: %w", runID, ErrNotFound)
	}
	if run.Status.Decided() {
		snapshot := run.Clone()
		g.mu.Unlock()
		return snapshot, awaitOutcome(snapshot)
	}

	now := time.Now().UTC()
	run.Status = StatusFailed
	run.Reason = "approval timed out"
	run.ResolvedAt = &now
	g.signalDecidedLocked(runID)
	snapshot := run.Clone()
	g.mu.Unlock()

	g.logger.Warn("tool run expired", "tool_run_id", runID)

	return snapshot, ErrApprovalTimeout
}

// awaitOutcome maps a decided run's state to the error contract of Await.
func awaitOutcome(run *Run) error {
	switch run.Status {
	case StatusRejected:
		return ErrRejected
	case StatusFailed:
		if run.DecidedAt == nil {
			return ErrApprovalTimeout
		}
		return nil
	default:
		return nil
	}
}

// signalDecidedLocked closes the per-run decision channel exactly once.
// Caller must hold g.mu.
func (g *Gate) signalDecidedLocked(runID string) {
	if ch, ok := g.decided[runID]; ok {
		close(ch)
		delete(g.decided, runID)
	}
}

func sortRunsByRequestTime(runs []*Run) {
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].RequestedAt.Before(runs[j].RequestedAt)
	})
}
