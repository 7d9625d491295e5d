package body

import "github.com/san-kum/gearsim/internal/arena"

// Handle is a generation-checked reference to a body in a [Set].
type Handle arena.Index

func (h Handle) String() string { return arena.Index(h).String() }

// View resolves body handles. Returned pointers are valid for the current step.
type View interface {
	Get(h Handle) (*Body, bool)
}

// Set owns the bodies of one world.
type Set struct {
	bodies *arena.Arena[Body]
}

func NewSet() *Set {
	return &Set{bodies: arena.New[Body]()}
}

func (s *Set) Insert(b *Body) Handle {
	return Handle(s.bodies.Insert(*b))
}

func (s *Set) Remove(h Handle) bool {
	_, ok := s.bodies.Remove(arena.Index(h))
	return ok
}

func (s *Set) Get(h Handle) (*Body, bool) {
	return s.bodies.Get(arena.Index(h))
}

func (s *Set) Contains(h Handle) bool {
	return s.bodies.Contains(arena.Index(h))
}

func (s *Set) Len() int { return s.bodies.Len() }

// Each visits bodies in slot order.
func (s *Set) Each(fn func(Handle, *Body)) {
	s.bodies.Each(func(i arena.Index, b *Body) bool {
		fn(Handle(i), b)
		return true
	})
}
