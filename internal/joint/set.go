package joint

import "github.com/san-kum/gearsim/internal/arena"

// Handle is a generation-checked reference to a joint in a [Set].
type Handle arena.Index

func (h Handle) String() string { return arena.Index(h).String() }

// Less orders handles by slot, then generation.
func (h Handle) Less(o Handle) bool { return arena.Index(h).Less(arena.Index(o)) }

// Set owns the joints of one world.
type Set struct {
	joints *arena.Arena[Joint]
}

func NewSet() *Set {
	return &Set{joints: arena.New[Joint]()}
}

func (s *Set) Insert(j Joint) Handle {
	return Handle(s.joints.Insert(j))
}

func (s *Set) Remove(h Handle) (Joint, bool) {
	return s.joints.Remove(arena.Index(h))
}

func (s *Set) Get(h Handle) (Joint, bool) {
	j, ok := s.joints.Get(arena.Index(h))
	if !ok {
		return nil, false
	}
	return *j, true
}

func (s *Set) Contains(h Handle) bool {
	return s.joints.Contains(arena.Index(h))
}

// Coupled resolves h to its coupling capability.
func (s *Set) Coupled(h Handle) (Coupled, bool) {
	j, ok := s.Get(h)
	if !ok {
		return nil, false
	}
	return j, true
}

func (s *Set) Len() int { return s.joints.Len() }

// Each visits joints in slot order.
func (s *Set) Each(fn func(Handle, Joint)) {
	s.joints.Each(func(i arena.Index, j *Joint) bool {
		fn(Handle(i), *j)
		return true
	})
}
