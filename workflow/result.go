package workflow

import (
	"time"

	"github.com/turnflow/turnflow/core"
)

// StepKind labels how a step entered the trace.
type StepKind string

const (
	// StepPipeline marks a step executed as part of a fixed pipeline order.
	StepPipeline StepKind = "pipeline"
	// StepHandoff marks a step reached through a handoff decision chain.
	StepHandoff StepKind = "handoff"
	// StepTool marks an approval-gated tool run spawned by an agent step.
	StepTool StepKind = "tool"
)

// Step is one executed unit of a turn. Steps are append-only; once recorded
// in a Result they are never mutated.
type Step struct {
	AgentID   string       `json:"agent_id"`
	Task      string       `json:"task,omitempty"`
	Output    *core.Output `json:"output,omitempty"`
	Kind      StepKind     `json:"kind"`
	Phase     string       `json:"phase,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Err       string       `json:"error,omitempty"`
	ToolRunID string       `json:"tool_run_id,omitempty"`
	Note      string       `json:"note,omitempty"`
}

// Termination classifies how a strategy execution ended.
type Termination string

const (
	// TerminationCompleted is the natural end of a turn.
	TerminationCompleted Termination = "completed"
	// TerminationTruncated means a configured bound (handoffs or iterations)
	// forced early termination with the best available response.
	TerminationTruncated Termination = "truncated"
	// TerminationCancelled means the caller's context was cancelled mid-turn.
	TerminationCancelled Termination = "cancelled"
	// TerminationFailed means a step error aborted the turn.
	TerminationFailed Termination = "failed"
)

// Truncation reasons recorded on a truncated Result.
const (
	TruncationHandoffLimit   = "handoff limit reached"
	TruncationIterationLimit = "iteration limit reached"
)

// Result is the terminal artifact of one strategy execution.
type Result struct {
	Strategy         string      `json:"strategy"`
	Steps            []Step      `json:"steps"`
	FinalResponse    string      `json:"final_response"`
	HandoffCount     int         `json:"handoff_count"`
	Truncated        bool        `json:"truncated"`
	TruncationReason string      `json:"truncation_reason,omitempty"`
	Termination      Termination `json:"termination"`
}

func newResult(strategy string) *Result {
	return &Result{Strategy: strategy, Termination: TerminationCompleted}
}

// record appends steps to the trace and keeps FinalResponse pointing at the
// latest successful agent output.
func (r *Result) record(steps ...Step) {
	for _, s := range steps {
		r.Steps = append(r.Steps, s)
		if s.Err == "" && s.Output != nil && s.Kind != StepTool && s.Output.Text != "" {
			r.FinalResponse = s.Output.Text
		}
	}
}

func (r *Result) truncate(reason string) {
	r.Truncated = true
	r.TruncationReason = reason
	r.Termination = TerminationTruncated
}

func (r *Result) cancel() {
	r.Termination = TerminationCancelled
}

func (r *Result) fail() {
	r.Termination = TerminationFailed
}
