// Package conversation maintains the bounded short-term conversation window.
package conversation

import (
	"sync"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance in the conversation.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// DefaultWindowSize bounds the window when no size is configured.
const DefaultWindowSize = 50

// Window is a fixed-capacity FIFO of recent turns. Once full, appending a
// new turn silently drops the oldest one. All methods are safe for
// concurrent use.
type Window struct {
	mu    sync.RWMutex
	turns []Turn
	size  int
}

// NewWindow creates a window holding at most size turns.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{
		turns: make([]Turn, 0, size),
		size:  size,
	}
}

// Append adds a turn, evicting the oldest when the window is full.
func (w *Window) Append(turn Turn) {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.turns) >= w.size {
		drop := len(w.turns) - w.size + 1
		w.turns = append(w.turns[:0], w.turns[drop:]...)
	}
	w.turns = append(w.turns, turn)
}

// AppendExchange adds a user turn and the assistant reply as one unit so a
// reader never observes the user half without its reply.
func (w *Window) AppendExchange(user, assistant Turn) {
	now := time.Now().UTC()
	if user.Timestamp.IsZero() {
		user.Timestamp = now
	}
	if assistant.Timestamp.IsZero() {
		assistant.Timestamp = now
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if overflow := len(w.turns) + 2 - w.size; overflow > 0 {
		if overflow >= len(w.turns) {
			w.turns = w.turns[:0]
		} else {
			w.turns = append(w.turns[:0], w.turns[overflow:]...)
		}
	}
	w.turns = append(w.turns, user, assistant)
}

// Recent returns a copy of the last n turns, oldest first. When n exceeds
// the stored count, all turns are returned.
func (w *Window) Recent(n int) []Turn {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if n <= 0 || len(w.turns) == 0 {
		return nil
	}
	if n > len(w.turns) {
		n = len(w.turns)
	}
	out := make([]Turn, n)
	copy(out, w.turns[len(w.turns)-n:])
	return out
}

// Snapshot returns a copy of every turn currently in the window.
func (w *Window) Snapshot() []Turn {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Turn, len(w.turns))
	copy(out, w.turns)
	return out
}

// Len returns the number of turns currently held.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.turns)
}

// Size returns the configured capacity.
func (w *Window) Size() int {
	return w.size
}

// Clear removes every turn from the window.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.turns = w.turns[:0]
}
