// Package observable provides a latest-value holder with change
// notifications for one writer and many readers.
package observable

import "sync"

// Value holds the latest published value of type T.
type Value[T any] struct {
	mu    sync.RWMutex
	value T
	equal func(a, b T) bool
	subs  map[*subscriber[T]]struct{}
}

type subscriber[T any] struct {
	ch   chan T
	once sync.Once
}

// New creates a Value compared with ==.
func New[T comparable](initial T) *Value[T] {
	return NewFunc(initial, func(a, b T) bool { return a == b })
}

// NewFunc creates a Value that uses equal to detect changes.
func NewFunc[T any](initial T, equal func(a, b T) bool) *Value[T] {
	return &Value[T]{
		value: initial,
		equal: equal,
		subs:  make(map[*subscriber[T]]struct{}),
	}
}

// Get returns the latest value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set stores x and notifies subscribers if it differs from the current
// value. It reports whether the value changed.
func (v *Value[T]) Set(x T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.equal(v.value, x) {
		return false
	}
	v.value = x

	for s := range v.subs {
		// Latest wins: replace a value the reader has not picked up yet.
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- x:
		default:
		}
	}
	return true
}

// Subscribe returns a channel that immediately yields the current value and
// then every change. A slow reader only sees the most recent value. The
// returned cancel func closes the channel; it is safe to call more than once.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	s := &subscriber[T]{ch: make(chan T, 1)}

	v.mu.Lock()
	s.ch <- v.value
	v.subs[s] = struct{}{}
	v.mu.Unlock()

	cancel := func() {
		s.once.Do(func() {
			v.mu.Lock()
			delete(v.subs, s)
			close(s.ch)
			v.mu.Unlock()
		})
	}
	return s.ch, cancel
}

// Subscribers returns the number of active subscriptions.
func (v *Value[T]) Subscribers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.subs)
}
