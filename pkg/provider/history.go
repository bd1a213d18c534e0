package provider

import (
	"sync"
	"time"
)

const (
	// defaultHistoryLimit is the number of exchanges an adapter keeps.
	defaultHistoryLimit = 10

	// contextExchanges is how many recent exchanges feed the next request.
	contextExchanges = 3
)

// Exchange is one completed prompt/response pair.
type Exchange struct {
	User      string
	Assistant string
	At        time.Time
}

// History is a bounded record of recent exchanges. Each non-offline
// adapter keeps its own so a failover target starts from whatever it
// last saw, not from the failed adapter's view.
type History struct {
	mu        sync.Mutex
	max       int
	exchanges []Exchange
}

// NewHistory creates a history bounded to max exchanges. Non-positive
// max falls back to the default of 10.
func NewHistory(max int) *History {
	if max <= 0 {
		max = defaultHistoryLimit
	}
	return &History{max: max}
}

// Add records an exchange, dropping the oldest when full.
func (h *History) Add(user, assistant string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.exchanges = append(h.exchanges, Exchange{
		User:      user,
		Assistant: assistant,
		At:        time.Now().UTC(),
	})
	if len(h.exchanges) > h.max {
		h.exchanges = h.exchanges[len(h.exchanges)-h.max:]
	}
}

// Recent returns up to the last n exchanges, oldest first.
func (h *History) Recent(n int) []Exchange {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n <= 0 || len(h.exchanges) == 0 {
		return nil
	}
	if n > len(h.exchanges) {
		n = len(h.exchanges)
	}
	out := make([]Exchange, n)
	copy(out, h.exchanges[len(h.exchanges)-n:])
	return out
}

// Clear drops all recorded exchanges.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exchanges = nil
}

// Len returns the number of recorded exchanges.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.exchanges)
}
