package workflow

import "sync"

// HandoffLimiter bounds the number of agent-to-agent transfers permitted in
// one conversation turn. Handoff decisions come from a non-deterministic
// external collaborator, so the bound is what prevents unbounded ping-pong
// between agents.
type HandoffLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewHandoffLimiter creates a limiter allowing at most max handoffs.
// If max == 0, handoffs are unlimited.
func NewHandoffLimiter(max int) *HandoffLimiter {
	return &HandoffLimiter{max: max}
}

// TryAdvance consumes one handoff slot. It returns false once the limit is
// reached; refused requests do not consume slots, so refusal is stable
// across repeated calls.
func (l *HandoffLimiter) TryAdvance() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max > 0 && l.count >= l.max {
		return false
	}
	l.count++

	return true
}

// Count returns the number of handoffs consumed so far.
func (l *HandoffLimiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count
}

// Remaining returns how many handoffs are left, or -1 when unlimited.
func (l *HandoffLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max == 0 {
		return -1
	}

	return l.max - l.count
}
