// Package workflow implements the control-flow strategies that drive one
// conversation turn: a fixed pipeline, a decision-driven handoff chain, a
// phase-based hybrid of the two, and a legacy single-agent supervisor.
//
// Strategies form a closed set selected by Select from the domain's workflow
// type. Each strategy consumes a Turn (domain config, invoker, optional tool
// broker and event sink) and produces a Result: the ordered execution trace,
// the final response, and termination metadata that distinguishes natural
// completion from limit-forced truncation, cancellation and failure.
package workflow
