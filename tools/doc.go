// Package tools implements the executor side of approval-gated tool runs. A
// Registry maps tool ids to schema-validated Go functions and satisfies
// core.ToolExecutor, so it plugs straight into the runner. Registered tools
// can also be exported as model-facing definitions for LLM adapters.
package tools
