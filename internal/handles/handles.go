// Package handles maps Go objects to integer handles that native code can
// carry around as an opaque priv value.
//
// Go pointers must not be stored in C memory. The host stores the uintptr
// handle instead and passes it back on every callback.
package handles

import (
	"sync"
)

// Table is a thread-safe registry of values of type T.
// The zero value is not usable; use New.
type Table[T any] struct {
	mu     sync.RWMutex
	values map[uintptr]T
	nextID uintptr
}

// New returns an empty table. Handle 0 is never issued.
func New[T any]() *Table[T] {
	return &Table[T]{values: make(map[uintptr]T), nextID: 1}
}

// Register stores v and returns its handle.
func (t *Table[T]) Register(v T) uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.values[id] = v
	return id
}

// Lookup returns the value for id.
func (t *Table[T]) Lookup(id uintptr) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[id]
	return v, ok
}

// Unregister removes id and returns the value it held.
func (t *Table[T]) Unregister(id uintptr) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[id]
	delete(t.values, id)
	return v, ok
}

// Count returns the number of live handles.
func (t *Table[T]) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}
