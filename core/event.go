package core

import (
	"time"

	"github.com/google/uuid"
)

// EventKind labels one step-level progress event.
type EventKind string

const (
	// EventTurnStarted marks the beginning of a conversation turn.
	EventTurnStarted EventKind = "turn_started"
	// EventStepStarted marks an agent invocation about to run.
	EventStepStarted EventKind = "step_started"
	// EventStepCompleted marks an agent invocation that finished (possibly with an error).
	EventStepCompleted EventKind = "step_completed"
	// EventHandoff marks a transfer of control between agents.
	EventHandoff EventKind = "handoff"
	// EventToolRequested marks a tool run entering the approval gate.
	EventToolRequested EventKind = "tool_requested"
	// EventToolResolved marks a tool run leaving the gate (executed, failed or rejected).
	EventToolResolved EventKind = "tool_resolved"
	// EventTurnCompleted marks the end of a conversation turn.
	EventTurnCompleted EventKind = "turn_completed"
)

// Event is one entry in the live progress stream emitted while a strategy
// executes. After emission an event is immutable. Events are suitable for
// direct serialization to progress displays.
type Event struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	TurnID         string    `json:"turn_id"`
	AgentID        string    `json:"agent_id,omitempty"`
	Kind           EventKind `json:"kind"`
	Timestamp      time.Time `json:"timestamp"`
	Message        string    `json:"message,omitempty"`
	ToolRunID      string    `json:"tool_run_id,omitempty"`
	Err            string    `json:"error,omitempty"`
}

// NewEvent constructs an event of the given kind stamped with a fresh id and
// a UTC timestamp.
func NewEvent(conversationID, turnID, agentID string, kind EventKind) Event {
	return Event{
		ID:             NewID(),
		ConversationID: conversationID,
		TurnID:         turnID,
		AgentID:        agentID,
		Kind:           kind,
		Timestamp:      time.Now().UTC(),
	}
}

// EmitFunc delivers progress events to an observer. Implementations must be
// safe to call from the goroutine executing the turn; a nil EmitFunc is
// treated as "no observer".
type EmitFunc func(Event)

// NewID generates a unique identifier for events, turns and tool runs.
func NewID() string { return uuid.NewString() }
