package transcript

import (
	"sync"

	"github.com/nixlim/chatprint/internal/messages"
)

// Entry is one rendered message kept for scrollback.
type Entry struct {
	Seq    int
	Kind   messages.Kind
	Sender string
	Output string
}

// RingBuffer is a fixed-capacity, thread-safe ring buffer of rendered
// entries. When the buffer is full, the oldest entry is evicted.
type RingBuffer struct {
	mu    sync.RWMutex
	items []Entry
	cap   int
	head  int // index of the oldest element
	count int
}

// NewRingBuffer creates a RingBuffer holding at most capacity entries.
// Capacities below 1 are raised to 1.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{
		items: make([]Entry, capacity),
		cap:   capacity,
	}
}

// Add inserts an entry, overwriting the oldest one when full.
func (rb *RingBuffer) Add(e Entry) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.count == rb.cap {
		rb.items[rb.head] = e
		rb.head = (rb.head + 1) % rb.cap
		return
	}
	rb.items[(rb.head+rb.count)%rb.cap] = e
	rb.count++
}

// ListAll returns all entries, oldest first.
func (rb *RingBuffer) ListAll() []Entry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	return rb.listLocked()
}

// ListBySender returns the entries whose sender is name, oldest first.
func (rb *RingBuffer) ListBySender(name string) []Entry {
	return rb.filter(func(e Entry) bool { return e.Sender == name })
}

// ListByKind returns the entries of the given kind, oldest first.
func (rb *RingBuffer) ListByKind(kind messages.Kind) []Entry {
	return rb.filter(func(e Entry) bool { return e.Kind == kind })
}

// Senders returns the distinct non-empty senders in order of first
// appearance.
func (rb *RingBuffer) Senders() []string {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, e := range rb.listLocked() {
		if e.Sender != "" && !seen[e.Sender] {
			seen[e.Sender] = true
			out = append(out, e.Sender)
		}
	}
	return out
}

func (rb *RingBuffer) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

func (rb *RingBuffer) Cap() int {
	return rb.cap
}

func (rb *RingBuffer) filter(keep func(Entry) bool) []Entry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	var result []Entry
	for _, e := range rb.listLocked() {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}

// listLocked returns all entries in order. Caller must hold at least a
// read lock.
func (rb *RingBuffer) listLocked() []Entry {
	if rb.count == 0 {
		return nil
	}
	result := make([]Entry, rb.count)
	for i := 0; i < rb.count; i++ {
		result[i] = rb.items[(rb.head+i)%rb.cap]
	}
	return result
}
