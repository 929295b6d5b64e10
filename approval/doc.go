// Package approval implements the human-in-the-loop gate that sits between
// an agent's intent to run a tool and the actual side effect.
//
// Every side-effecting tool call becomes a Run that starts in
// pending_approval and moves through a strict state machine:
//
//	pending_approval -> approved -> executed
//	pending_approval -> approved -> failed
//	pending_approval -> rejected
//
// rejected, executed and failed are terminal. Any other transition is
// refused with an *InvalidTransitionError; the gate never silently corrects
// state. Transitions on one run are mutually exclusive: of two concurrent
// approvals exactly one succeeds.
//
// The gate stamps the caller-supplied actor role and a timestamp on every
// transition but holds no authorization policy of its own; deciding who may
// approve is the caller's concern.
package approval
