package event

import "sync"

// Value is a state channel: it holds the latest value and notifies
// subscribers only when the value actually changes.
type Value[T comparable] struct {
	ch *Channel[T]

	mu  sync.RWMutex
	cur T
}

// NewValue creates a state channel with an initial value.
func NewValue[T comparable](name string, initial T) *Value[T] {
	return &Value[T]{
		ch:  NewChannel[T](name),
		cur: initial,
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cur
}

// Set stores x and notifies subscribers if it differs from the current value.
// Returns true when a change was published.
func (v *Value[T]) Set(x T) bool {
	v.mu.Lock()
	if v.cur == x {
		v.mu.Unlock()
		return false
	}
	v.cur = x
	v.mu.Unlock()

	v.ch.Publish(x)
	return true
}

// Subscribe registers fn for change notifications.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	return v.ch.Subscribe(fn)
}
