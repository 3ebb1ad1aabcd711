package dispatch

import "sync"

// Holder retains the latest snapshot for one source. Latest wins; reads
// never trigger a re-poll.
type Holder[T any] struct {
	mu    sync.Mutex
	value T
	set   bool
}

// Get returns the retained value and whether one was ever stored.
func (h *Holder[T]) Get() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value, h.set
}

// Set overwrites the retained value.
func (h *Holder[T]) Set(value T) {
	h.mu.Lock()
	h.value = value
	h.set = true
	h.mu.Unlock()
}
