package service

import (
	"sync"

	"travelchat/internal/domain"
)

// DefaultGreeting opens every session.
const DefaultGreeting = "Welcome to your Puerto Rico Travel Planner! How can I help you plan your trip today?"

// Transcript is the append-only, chronological turn list of one session.
type Transcript struct {
	mu    sync.RWMutex
	turns []domain.Turn
}

// NewTranscript starts a transcript, seeded with an assistant greeting when
// greeting is non-empty.
func NewTranscript(greeting string) *Transcript {
	t := &Transcript{}
	if greeting != "" {
		t.turns = append(t.turns, domain.Turn{Role: domain.RoleAssistant, Content: greeting})
	}
	return t
}

// Append adds a turn at the end.
func (t *Transcript) Append(turn domain.Turn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, turn)
}

// Turns returns a copy of all turns in order.
func (t *Transcript) Turns() []domain.Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Last returns a copy of the last n turns, or all of them if there are fewer.
func (t *Transcript) Last(n int) []domain.Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n > len(t.turns) {
		n = len(t.turns)
	}
	out := make([]domain.Turn, n)
	copy(out, t.turns[len(t.turns)-n:])
	return out
}
