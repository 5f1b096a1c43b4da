// Package search coalesces rapid, repeated searches (e.g. one per keystroke) so that
// only the latest one reaches the backend, and so that a stale response can never
// replace a newer one.
package search

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultWindow is how long a search waits for a newer one before it's issued
const DefaultWindow = 500 * time.Millisecond

// ErrSuperseded is returned by Do when a newer call with the same key made the result
// irrelevant, either before the search was issued or while it was in flight
var ErrSuperseded = errors.New("search superseded by a newer one")

// Debouncer tags each call with a sequence number and tracks the latest number per
// key. A call only runs once the debounce window has passed with no newer call for its
// key, and its result is only returned if it is still the latest call when it
// completes. A key is forgotten once its latest call has finished.
type Debouncer struct {
	window time.Duration

	mu     sync.Mutex
	seq    uint64
	latest map[string]uint64
}

// NewDebouncer initializes a Debouncer with the given window
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		latest: make(map[string]uint64),
	}
}

// Do waits for the debounce window and then calls fn, unless a newer call for the
// same key arrives in the meantime. If ctx is canceled while waiting, ctx.Err() is
// returned and fn is never called.
func Do[T any](ctx context.Context, d *Debouncer, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	seq := d.begin(key)

	timer := time.NewTimer(d.window)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		d.finish(key, seq)
		return zero, ctx.Err()
	case <-timer.C:
	}
	if !d.isLatest(key, seq) {
		return zero, ErrSuperseded
	}

	result, err := fn(ctx)
	if !d.finish(key, seq) {
		return zero, ErrSuperseded
	}
	return result, err
}

// Pending reports whether a call for the given key has yet to finish
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.latest[key]
	return ok
}

// Len returns the number of keys with a call that has yet to finish
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.latest)
}

// begin issues a sequence number that is unique across all keys, so a number is
// never reused after its key has been forgotten
func (d *Debouncer) begin(key string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	d.latest[key] = d.seq
	return d.seq
}

func (d *Debouncer) isLatest(key string, seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.latest[key] == seq
}

// finish forgets the key if seq is its latest call, and reports whether it was
func (d *Debouncer) finish(key string, seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.latest[key] != seq {
		return false
	}
	delete(d.latest, key)
	return true
}
