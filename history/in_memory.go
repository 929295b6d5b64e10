package history

import (
	"sync"
	"time"

	"github.com/turnflow/turnflow/core"
)

// Record summarizes one completed turn of a conversation.
type Record struct {
	TurnID        string        `json:"turn_id"`
	Request       string        `json:"request"`
	FinalResponse string        `json:"final_response,omitempty"`
	Termination   string        `json:"termination"`
	Steps         int           `json:"steps"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	Err           string        `json:"error,omitempty"`
}

// Store persists per-conversation transcripts and turn records.
type Store interface {
	// Transcript returns the accumulated transcript for a conversation.
	// Unknown conversations yield an empty transcript.
	Transcript(conversationID string) (core.Transcript, error)

	// SaveTranscript replaces the stored transcript for a conversation.
	SaveTranscript(conversationID string, tr core.Transcript) error

	// Append adds a turn record to a conversation's history.
	Append(conversationID string, rec Record) error

	// Turns returns a conversation's turn records, oldest first.
	Turns(conversationID string) ([]Record, error)
}

type conversation struct {
	transcript core.Transcript
	turns      []Record
}

// InMemoryStore is a volatile Store implementation keeping conversations in
// a process-local map. Returned slices are copies, so callers cannot mutate
// internal state.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*conversation
}

// NewInMemoryStore constructs an empty in-memory history store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string]*conversation)}
}

// Transcript implements Store.
func (s *InMemoryStore) Transcript(conversationID string) (core.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.conversations[conversationID]; ok {
		return c.transcript, nil
	}
	return core.Transcript{}, nil
}

// SaveTranscript implements Store. Transcript values are immutable, so the
// stored value needs no further copying.
func (s *InMemoryStore) SaveTranscript(conversationID string, tr core.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getLocked(conversationID).transcript = tr
	return nil
}

// Append implements Store.
func (s *InMemoryStore) Append(conversationID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.getLocked(conversationID)
	c.turns = append(c.turns, rec)
	return nil
}

// Turns implements Store.
func (s *InMemoryStore) Turns(conversationID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[conversationID]
	if !ok {
		return nil, nil
	}
	cp := make([]Record, len(c.turns))
	copy(cp, c.turns)
	return cp, nil
}

// getLocked returns the conversation entry, creating it if absent. Caller
// must hold the write lock.
func (s *InMemoryStore) getLocked(conversationID string) *conversation {
	c, ok := s.conversations[conversationID]
	if !ok {
		c = &conversation{}
		s.conversations[conversationID] = c
	}
	return c
}
