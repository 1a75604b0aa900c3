// Package state holds the observable client state shared by the TUI and CLI.
package state

import (
	"slices"
	"sync"
)

// Value is a mutex-guarded observable holder. Subscribers run synchronously
// after every Set, outside the lock.
type Value[T any] struct {
	mu   sync.Mutex
	v    T
	next int
	subs map[int]func(T)
}

// NewValue returns a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.v
}

// Set replaces the value and notifies subscribers.
func (v *Value[T]) Set(x T) {
	v.mu.Lock()
	v.v = x
	subs := v.snapshot()
	v.mu.Unlock()
	for _, fn := range subs {
		fn(x)
	}
}

// Update applies fn to the current value under the lock, then notifies.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	x := fn(v.v)
	v.v = x
	subs := v.snapshot()
	v.mu.Unlock()
	for _, f := range subs {
		f(x)
	}
	return x
}

// Subscribe registers fn and returns a func that removes it.
func (v *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.subs == nil {
		v.subs = make(map[int]func(T))
	}
	id := v.next
	v.next++
	v.subs[id] = fn
	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

func (v *Value[T]) snapshot() []func(T) {
	if len(v.subs) == 0 {
		return nil
	}
	ids := make([]int, 0, len(v.subs))
	for id := range v.subs {
		ids = append(ids, id)
	}
	// Registration order.
	slices.Sort(ids)
	out := make([]func(T), len(ids))
	for i, id := range ids {
		out[i] = v.subs[id]
	}
	return out
}
