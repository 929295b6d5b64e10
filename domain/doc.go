// Package domain models the per-domain configuration that drives the
// orchestration engine: the agent set, ordered routing rules, workflow type
// selection, pipeline order, phase layout for hybrid workflows, handoff and
// iteration bounds, and the access-control list.
//
// Configurations are plain data. They are validated once (Validate) before a
// turn starts and are treated as immutable for the duration of an execution.
// A YAML loader is provided as a convenience for callers that keep domain
// definitions in files; the engine itself only ever consumes parsed Config
// values.
package domain
