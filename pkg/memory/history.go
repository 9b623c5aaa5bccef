// Package memory provides the bounded request/result history the assistant
// keeps for contextual continuity.
package memory

import (
	"sync"
	"time"

	"github.com/XiaoConstantine/coda-go/pkg/core"
)

// DefaultCapacity is how many exchanges the history retains unless configured
// otherwise.
const DefaultCapacity = 50

// Entry is one recorded request/result exchange. Sequence numbers are
// monotonically increasing for the lifetime of a store and are never reused,
// even after eviction or Clear.
type Entry struct {
	Seq     uint64       `json:"seq"`
	Request core.Request `json:"request"`
	Result  core.Result  `json:"result"`
	At      time.Time    `json:"at"`
}

// History is the contract the assistant facade records exchanges through.
type History interface {
	// Append records an exchange, evicting the oldest entry at capacity,
	// and returns the new entry's sequence number
	Append(req core.Request, res core.Result) (uint64, error)

	// Recent returns the last n entries in most-recent-last order; n <= 0
	// yields an empty slice
	Recent(n int) ([]Entry, error)

	// Len reports the current number of retained entries
	Len() (int, error)

	// Clear empties the store. Sequence numbering continues to increase
	// monotonically across clears so external references stay unambiguous.
	Clear() error
}

// BoundedHistory is the in-memory FIFO implementation. Eviction drops the
// oldest entry first; the entry count never exceeds the capacity.
type BoundedHistory struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	nextSeq  uint64
}

// NewBoundedHistory creates a history store with the given capacity.
// Non-positive capacities fall back to DefaultCapacity.
func NewBoundedHistory(capacity int) *BoundedHistory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &BoundedHistory{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

func (h *BoundedHistory) Append(req core.Request, res core.Result) (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextSeq++
	entry := Entry{
		Seq:     h.nextSeq,
		Request: req,
		Result:  res,
		At:      time.Now().UTC(),
	}

	h.entries = append(h.entries, entry)
	if len(h.entries) > h.capacity {
		// FIFO eviction; copy down so the backing array doesn't pin
		// evicted entries
		n := copy(h.entries, h.entries[len(h.entries)-h.capacity:])
		h.entries = h.entries[:n]
	}

	return entry.Seq, nil
}

func (h *BoundedHistory) Recent(n int) ([]Entry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 {
		return []Entry{}, nil
	}
	if n > len(h.entries) {
		n = len(h.entries)
	}

	out := make([]Entry, n)
	copy(out, h.entries[len(h.entries)-n:])
	return out, nil
}

func (h *BoundedHistory) Len() (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries), nil
}

func (h *BoundedHistory) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	// nextSeq is deliberately left alone
	h.entries = h.entries[:0]
	return nil
}

// Capacity returns the configured maximum entry count.
func (h *BoundedHistory) Capacity() int {
	return h.capacity
}

var _ History = (*BoundedHistory)(nil)
