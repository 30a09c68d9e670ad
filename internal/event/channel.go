// Package event provides explicitly owned publish/subscribe channels.
//
// Contract: a channel has a single writer (the goroutine that owns the
// publishing component) and any number of readers. Subscribing and
// unsubscribing are safe from any goroutine; handlers run synchronously on the
// publisher's goroutine in subscription order and must not block.
package event

import "sync"

// Channel is a typed fire-and-forget broadcast channel.
type Channel[T any] struct {
	name string

	mu     sync.RWMutex
	nextID uint64
	subs   []subscription[T]
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

// NewChannel creates an empty channel. Name is used for diagnostics only.
func NewChannel[T any](name string) *Channel[T] {
	return &Channel[T]{name: name}
}

// Name returns channel name.
func (c *Channel[T]) Name() string {
	return c.name
}

// Subscribe registers fn and returns a function that removes it.
// The returned function is idempotent.
func (c *Channel[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscription[T]{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { c.remove(id) })
	}
}

func (c *Channel[T]) remove(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, s := range c.subs {
		if s.id == id {
			// copy-on-write: Publish may be iterating over the old slice
			next := make([]subscription[T], 0, len(c.subs)-1)
			next = append(next, c.subs[:i]...)
			next = append(next, c.subs[i+1:]...)
			c.subs = next
			return
		}
	}
}

// Publish delivers v to all current subscribers.
func (c *Channel[T]) Publish(v T) {
	c.mu.RLock()
	subs := c.subs
	c.mu.RUnlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns number of subscribers.
func (c *Channel[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}
