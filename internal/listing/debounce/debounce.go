// Package debounce holds raw search input and settles it after a quiet window.
package debounce

import (
	"sync"
	"time"
)

// DefaultQuiet is the quiet window used when none is configured.
const DefaultQuiet = 300 * time.Millisecond

// Buffer is a debounced query: Settled follows Raw once no SetRaw call has
// happened for the quiet window. Safe for concurrent use.
type Buffer struct {
	mu       sync.Mutex
	quiet    time.Duration
	raw      string
	settled  string
	gen      uint64
	timer    *time.Timer
	stopped  bool
	onSettle func(string)
}

// New creates a Buffer. onSettle, if not nil, is called from the timer
// goroutine each time the settled value changes.
func New(quiet time.Duration, onSettle func(string)) *Buffer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Buffer{quiet: quiet, onSettle: onSettle}
}

// SetRaw records value and (re)starts the quiet window, cancelling any
// pending settle.
func (b *Buffer) SetRaw(value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}

	b.raw = value
	b.gen++
	gen := b.gen
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.quiet, func() { b.settle(gen) })
}

func (b *Buffer) settle(gen uint64) {
	b.mu.Lock()
	// a newer SetRaw, Reset or Stop owns the buffer now
	if b.stopped || gen != b.gen {
		b.mu.Unlock()
		return
	}
	b.timer = nil
	changed := b.settled != b.raw
	b.settled = b.raw
	value := b.settled
	cb := b.onSettle
	b.mu.Unlock()

	if changed && cb != nil {
		cb(value)
	}
}

// Raw returns the latest input.
func (b *Buffer) Raw() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.raw
}

// Settled returns the value filtering should use.
func (b *Buffer) Settled() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settled
}

// Pending reports whether a settle is scheduled.
func (b *Buffer) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timer != nil
}

// Reset sets raw and settled to value at once, dropping any pending settle.
// It does not invoke onSettle; used by "clear filters".
func (b *Buffer) Reset(value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.raw = value
	b.settled = value
}

// Stop cancels any pending settle; later SetRaw calls are ignored.
func (b *Buffer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	b.gen++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
