// Package logging provides a tiny abstraction over structured loggers so the
// engine can depend on a minimal interface (Logger) while callers plug in
// slog, zap or anything else. It also offers a FlowLogger with contextual
// helpers (conversation, turn) and domain specific logging for steps,
// handoffs and tool runs.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger defines the minimal structured logging interface the engine uses.
// Arguments are alternating key/value pairs, slog style.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NoOpLogger discards all log messages. Useful for tests or when logging is
// disabled.
type NoOpLogger struct{}

// Debug implements Logger.
func (NoOpLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NoOpLogger) Info(string, ...any) {}

// Warn implements Logger.
func (NoOpLogger) Warn(string, ...any) {}

// Error implements Logger.
func (NoOpLogger) Error(string, ...any) {}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// Config configures construction of a JSON or text slog-backed Logger.
type Config struct {
	Level     slog.Level
	Format    string // "json" or "text"
	Output    io.Writer
	AddSource bool
}

// DefaultConfig returns a baseline JSON info-level configuration.
func DefaultConfig() *Config {
	return &Config{Level: slog.LevelInfo, Format: "json", Output: os.Stdout}
}

// New builds a Logger from a config (or defaults if nil).
func New(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return NewSlogAdapter(slog.New(handler))
}

// FlowLogger decorates a Logger with conversation/turn identifiers and
// domain helpers. It is cheap to copy via the With* methods.
type FlowLogger struct {
	inner          Logger
	conversationID string
	turnID         string
}

// NewFlowLogger wraps inner; a nil inner falls back to the no-op logger.
func NewFlowLogger(inner Logger) *FlowLogger {
	if inner == nil {
		inner = NoOpLogger{}
	}
	return &FlowLogger{inner: inner}
}

// WithTurn returns a copy bound to a conversation and turn.
func (l *FlowLogger) WithTurn(conversationID, turnID string) *FlowLogger {
	cp := *l
	cp.conversationID = conversationID
	cp.turnID = turnID
	return &cp
}

func (l *FlowLogger) attrs(args []any) []any {
	out := make([]any, 0, len(args)+4)
	if l.conversationID != "" {
		out = append(out, "conversation_id", l.conversationID)
	}
	if l.turnID != "" {
		out = append(out, "turn_id", l.turnID)
	}
	return append(out, args...)
}

// Debug implements Logger.
func (l *FlowLogger) Debug(msg string, args ...any) { l.inner.Debug(msg, l.attrs(args)...) }

// Info implements Logger.
func (l *FlowLogger) Info(msg string, args ...any) { l.inner.Info(msg, l.attrs(args)...) }

// Warn implements Logger.
func (l *FlowLogger) Warn(msg string, args ...any) { l.inner.Warn(msg, l.attrs(args)...) }

// Error implements Logger.
func (l *FlowLogger) Error(msg string, args ...any) { l.inner.Error(msg, l.attrs(args)...) }

// LogStep records the outcome of one agent invocation.
func (l *FlowLogger) LogStep(agentID string, dur time.Duration, err error) {
	if err != nil {
		l.Error("step failed", "agent_id", agentID, "duration", dur, "error", err.Error())
		return
	}
	l.Info("step completed", "agent_id", agentID, "duration", dur)
}

// LogHandoff records a transfer of control between agents.
func (l *FlowLogger) LogHandoff(fromAgentID, toAgentID, reason string) {
	l.Info("handoff", "from", fromAgentID, "to", toAgentID, "reason", reason)
}

// LogToolRun records the resolution of an approval-gated tool run.
func (l *FlowLogger) LogToolRun(toolRunID, toolID, status string) {
	l.Info("tool run resolved", "tool_run_id", toolRunID, "tool_id", toolID, "status", status)
}

// LogTurn records aggregate turn metrics.
func (l *FlowLogger) LogTurn(strategy string, steps int, dur time.Duration, err error) {
	if err != nil {
		l.Error("turn failed", "strategy", strategy, "step_count", steps, "duration", dur, "error", err.Error())
		return
	}
	l.Info("turn completed", "strategy", strategy, "step_count", steps, "duration", dur)
}
