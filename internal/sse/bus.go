package sse

import "sync"

// bus fans messages out to the buffered channel of each open connection. A
// connection that has fallen behind misses messages rather than stalling the others.
type bus[T any] struct {
	mu   sync.RWMutex
	subs map[chan T]struct{}
}

func newBus[T any]() *bus[T] {
	return &bus[T]{subs: make(map[chan T]struct{})}
}

func (b *bus[T]) subscribe(ch chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[ch] = struct{}{}
}

// unsubscribe is a no-op for a channel that isn't subscribed
func (b *bus[T]) unsubscribe(ch chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subs, ch)
}

func (b *bus[T]) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = make(map[chan T]struct{})
}

// publish delivers message to every subscriber with room in its buffer, and returns
// the number of subscribers that were skipped because their buffer was full
func (b *bus[T]) publish(message T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	dropped := 0
	for ch := range b.subs {
		select {
		case ch <- message:
		default:
			dropped++
		}
	}
	return dropped
}

func (b *bus[T]) count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}
