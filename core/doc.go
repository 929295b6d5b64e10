// Package core defines the shared kernel of the Turnflow orchestration
// engine: the agent descriptor and invocation contract, the immutable
// transcript that accumulates context across workflow steps, the event
// stream consumed by live-progress clients, and the invocation error
// taxonomy.
//
// The package is deliberately free of orchestration logic. Strategies
// (package workflow), routing (package routing) and the approval gate
// (package approval) all build on these types without core depending on
// any of them.
package core
