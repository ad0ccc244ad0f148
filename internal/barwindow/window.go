// Package barwindow provides a fixed-capacity rolling window over
// model.Bar. Unlike a queue, appending to a full window evicts the oldest
// bar, so the window always holds the most recent history. The capacity is
// rounded up to a power of two for fast bitwise modulo.
package barwindow

import (
	"sync"

	"techpulse/internal/model"
)

// Window is a rolling bar window. Safe for concurrent use.
type Window struct {
	mu      sync.RWMutex
	buf     []model.Bar
	mask    uint64
	head    uint64 // total bars ever appended
	evicted uint64
}

// New creates a window. capacity is rounded up to the next power of two.
// Minimum capacity is 2.
func New(capacity int) *Window {
	cap := nextPow2(capacity)
	if cap < 2 {
		cap = 2
	}
	return &Window{
		buf:  make([]model.Bar, cap),
		mask: uint64(cap - 1),
	}
}

// Append adds a bar, evicting the oldest when the window is full.
func (w *Window) Append(b model.Bar) {
	w.mu.Lock()
	if w.head >= uint64(len(w.buf)) {
		w.evicted++
	}
	w.buf[w.head&w.mask] = b
	w.head++
	w.mu.Unlock()
}

// Len returns the number of bars currently held.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.head > uint64(len(w.buf)) {
		return len(w.buf)
	}
	return int(w.head)
}

// Cap returns the window capacity.
func (w *Window) Cap() int {
	return len(w.buf)
}

// Evicted returns the total number of bars dropped off the window's tail.
func (w *Window) Evicted() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.evicted
}

// Last returns the most recent bar.
func (w *Window) Last() (model.Bar, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.head == 0 {
		return model.Bar{}, false
	}
	return w.buf[(w.head-1)&w.mask], true
}

// Snapshot returns the held bars in chronological order. The returned slice
// is a copy and safe to retain.
func (w *Window) Snapshot() []model.Bar {
	w.mu.RLock()
	defer w.mu.RUnlock()

	n := w.head
	if n > uint64(len(w.buf)) {
		n = uint64(len(w.buf))
	}
	out := make([]model.Bar, n)
	start := w.head - n
	for i := uint64(0); i < n; i++ {
		out[i] = w.buf[(start+i)&w.mask]
	}
	return out
}

// nextPow2 returns the smallest power of 2 >= n.
func nextPow2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
