// Package arena provides a generational slot store.
//
// Every slot carries a generation counter that is bumped when its value is
// removed. An [Index] remembers the generation it was issued with, so an
// index kept after removal never resolves to whatever later reuses the slot.
package arena

import "fmt"

// Index identifies a slot and the generation it was issued for.
type Index struct {
	Index      uint32 `json:"index"`
	Generation uint32 `json:"generation"`
}

func (i Index) String() string {
	return fmt.Sprintf("%d.%d", i.Index, i.Generation)
}

// Less orders indices by slot, then generation.
func (i Index) Less(o Index) bool {
	if i.Index != o.Index {
		return i.Index < o.Index
	}
	return i.Generation < o.Generation
}

type entry[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Arena stores values of type T in reusable slots. Not safe for concurrent use.
type Arena[T any] struct {
	entries []entry[T]
	free    []uint32
	len     int
}

func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores v and returns its index. Freed slots are reused in LIFO order.
func (a *Arena[T]) Insert(v T) Index {
	a.len++
	if n := len(a.free); n > 0 {
		slot := a.free[n-1]
		a.free = a.free[:n-1]
		e := &a.entries[slot]
		e.value = v
		e.occupied = true
		return Index{Index: slot, Generation: e.generation}
	}
	a.entries = append(a.entries, entry[T]{value: v, occupied: true})
	return Index{Index: uint32(len(a.entries) - 1)}
}

// Remove frees the slot behind idx and returns its value.
func (a *Arena[T]) Remove(idx Index) (T, bool) {
	var zero T
	if !a.Contains(idx) {
		return zero, false
	}
	e := &a.entries[idx.Index]
	v := e.value
	e.value = zero
	e.occupied = false
	e.generation++
	a.free = append(a.free, idx.Index)
	a.len--
	return v, true
}

// Contains reports whether idx still refers to a live value.
func (a *Arena[T]) Contains(idx Index) bool {
	if int(idx.Index) >= len(a.entries) {
		return false
	}
	e := a.entries[idx.Index]
	return e.occupied && e.generation == idx.Generation
}

// Get returns a pointer to the live value behind idx. The pointer is only
// valid until the next Insert.
func (a *Arena[T]) Get(idx Index) (*T, bool) {
	if !a.Contains(idx) {
		return nil, false
	}
	return &a.entries[idx.Index].value, true
}

func (a *Arena[T]) Len() int { return a.len }

// Each visits live values in slot order. Returning false stops the walk.
func (a *Arena[T]) Each(fn func(Index, *T) bool) {
	for i := range a.entries {
		e := &a.entries[i]
		if !e.occupied {
			continue
		}
		if !fn(Index{Index: uint32(i), Generation: e.generation}, &e.value) {
			return
		}
	}
}
