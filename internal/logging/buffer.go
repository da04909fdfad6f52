package logging

import (
	"sync"
	"time"
)

// LogEntry is one record kept for the API log stream.
type LogEntry struct {
	Seq        uint64         `json:"seq"`
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level"`
	Module     string         `json:"module"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// History keeps the newest entries up to a fixed capacity. Sequence
// numbers start at 1 and never repeat, so a reader can resume after the
// last entry it saw.
type History struct {
	mu    sync.RWMutex
	slots []LogEntry
	next  uint64 // sequence number of the next entry
}

// NewHistory creates a history holding up to capacity entries.
func NewHistory(capacity int) *History {
	return &History{slots: make([]LogEntry, capacity), next: 1}
}

// Append stores entry with the next sequence number and returns it.
func (h *History) Append(entry LogEntry) LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry.Seq = h.next
	h.slots[int((h.next-1)%uint64(len(h.slots)))] = entry
	h.next++
	return entry
}

// Len returns the number of entries held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return min(int(h.next-1), len(h.slots))
}

// Since returns the held entries with a sequence number above seq,
// oldest first. Since(0) returns everything.
func (h *History) Since(seq uint64) []LogEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := uint64(len(h.slots))
	first := uint64(1)
	if h.next-1 > n {
		first = h.next - n
	}
	first = max(first, seq+1)
	if first >= h.next {
		return nil
	}

	out := make([]LogEntry, 0, h.next-first)
	for s := first; s < h.next; s++ {
		out = append(out, h.slots[int((s-1)%n)])
	}
	return out
}
