package approval

import (
	"maps"
	"time"
)

// Status is the lifecycle state of a tool run.
type Status string

const (
	// StatusPendingApproval is the initial state of every run.
	StatusPendingApproval Status = "pending_approval"
	// StatusApproved means a human released the run for execution.
	StatusApproved Status = "approved"
	// StatusRejected means a human refused the run. Terminal.
	StatusRejected Status = "rejected"
	// StatusExecuted means the tool ran and produced a result. Terminal.
	StatusExecuted Status = "executed"
	// StatusFailed means the approved tool run failed, or the approval
	// window elapsed. Terminal.
	StatusFailed Status = "failed"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusExecuted || s == StatusFailed
}

// Decided reports whether the human decision (approve or reject) happened.
func (s Status) Decided() bool { return s != StatusPendingApproval }

// Run is one approval-gated tool execution request. Snapshots returned by
// the gate are copies; mutating them has no effect on gate state.
type Run struct {
	ID             string         `json:"id"`
	ToolID         string         `json:"tool_id"`
	ConversationID string         `json:"conversation_id"`
	Params         map[string]any `json:"params,omitempty"`
	Status         Status         `json:"status"`

	// Actor roles stamped per transition. The gate never infers these;
	// they always come from the caller.
	RequestedBy string `json:"requested_by"`
	ApprovedBy  string `json:"approved_by,omitempty"`
	RejectedBy  string `json:"rejected_by,omitempty"`
	ExecutedBy  string `json:"executed_by,omitempty"`

	// Reason carries the rejection reason or the failure cause.
	Reason string `json:"reason,omitempty"`

	// Result is the tool's payload once the run reached executed.
	Result any `json:"result,omitempty"`

	RequestedAt time.Time  `json:"requested_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Clone returns a deep-enough copy safe to hand to callers: the params map
// is copied, the result payload is shared (treated as immutable by
// convention).
func (r *Run) Clone() *Run {
	cp := *r
	if r.Params != nil {
		cp.Params = make(map[string]any, len(r.Params))
		maps.Copy(cp.Params, r.Params)
	}
	if r.DecidedAt != nil {
		t := *r.DecidedAt
		cp.DecidedAt = &t
	}
	if r.ResolvedAt != nil {
		t := *r.ResolvedAt
		cp.ResolvedAt = &t
	}
	return &cp
}
