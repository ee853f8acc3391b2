package session

import (
	"sync"

	"github.com/google/uuid"
)

// Entry is one high-score slot
type Entry struct {
	Name  string    `json:"name" msgpack:"name"`
	Score int       `json:"score" msgpack:"score"`
	RunID uuid.UUID `json:"run" msgpack:"run"`
}

// HighScores is a fixed-size table sorted descending; empty slots hold score -1
type HighScores struct {
	mu    sync.RWMutex
	slots []Entry
}

// NewHighScores creates a table with n empty slots
func NewHighScores(n int) *HighScores {
	h := &HighScores{slots: make([]Entry, n)}
	for i := range h.slots {
		h.slots[i].Score = -1
	}
	return h
}

// Merge inserts an entry above the first strictly lower score.
// Returns the rank taken, or -1 if the score did not place
func (h *HighScores) Merge(name string, score int, run uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.slots {
		if h.slots[i].Score < score {
			copy(h.slots[i+1:], h.slots[i:len(h.slots)-1])
			h.slots[i] = Entry{Name: name, Score: score, RunID: run}
			return i
		}
	}
	return -1
}

// Entries returns the filled slots in rank order
func (h *HighScores) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Entry, 0, len(h.slots))
	for _, e := range h.slots {
		if e.Score < 0 {
			break
		}
		out = append(out, e)
	}
	return out
}
