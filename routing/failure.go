package routing

import "fmt"

// FailureError describes a handoff directive naming an agent that does not
// exist in the domain. It is recoverable: the owning strategy falls back to
// the domain's default agent and records the failure as a trace annotation.
type FailureError struct {
	TargetAgentID   string
	FallbackAgentID string
}

// Error implements the error interface.
func (e *FailureError) Error() string {
	return fmt.Sprintf("handoff target %q not found, routed to %q", e.TargetAgentID, e.FallbackAgentID)
}
