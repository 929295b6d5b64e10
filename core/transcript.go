package core

import (
	"fmt"
	"strings"
	"time"
)

// Entry is one accumulated piece of context: the output an agent (or a tool
// run on its behalf) produced earlier in the turn.
type Entry struct {
	AgentID   string    `json:"agent_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is the ordered, append-only context accumulated across workflow
// steps. Values are immutable: Append returns a new Transcript backed by a
// fresh slice, so a strategy (or a composite phase) can hand its transcript
// to a sub-execution without the sub-execution's appends ever leaking back.
type Transcript struct {
	entries []Entry
}

// NewTranscript builds a transcript from the given entries.
func NewTranscript(entries ...Entry) Transcript {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return Transcript{entries: cp}
}

// Append returns a new transcript with e added at the end. The receiver is
// not modified.
func (t Transcript) Append(e Entry) Transcript {
	cp := make([]Entry, 0, len(t.entries)+1)
	cp = append(cp, t.entries...)
	cp = append(cp, e)
	return Transcript{entries: cp}
}

// AppendOutput is shorthand for appending an agent's textual output stamped
// with the current time.
func (t Transcript) AppendOutput(agentID, text string) Transcript {
	return t.Append(Entry{AgentID: agentID, Text: text, Timestamp: time.Now().UTC()})
}

// Entries returns a copy of the accumulated entries in order.
func (t Transcript) Entries() []Entry {
	cp := make([]Entry, len(t.entries))
	copy(cp, t.entries)
	return cp
}

// Len returns the number of accumulated entries.
func (t Transcript) Len() int { return len(t.entries) }

// Last returns the most recent entry, if any.
func (t Transcript) Last() (Entry, bool) {
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1], true
}

// Render formats the transcript as plain text suitable for inclusion in an
// agent prompt. Each entry appears on its own line prefixed by the agent id.
func (t Transcript) Render() string {
	if len(t.entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range t.entries {
		fmt.Fprintf(&b, "[%s] %s\n", e.AgentID, e.Text)
	}
	return b.String()
}
