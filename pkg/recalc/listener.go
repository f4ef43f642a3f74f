package recalc

import "context"

// Listener is anything that can be notified when a Variable it reads has
// changed value. References are the listeners of the graph.
type Listener interface {
	// SourceChanged notifies the listener that source has a new value.
	// It returns once the listener, and everything downstream of it, is
	// up to date.
	SourceChanged(ctx context.Context, source *Variable)

	// ID returns a unique identifier for this listener.
	// Used for set membership and deduplication.
	ID() uint64
}

// listenerSet is an insertion-ordered set of listeners with constant-time
// membership tests. It does not own its members: removing a listener from the
// graph is the listener's job, not the set's.
//
// listenerSet is not safe for concurrent use; Variable guards it.
type listenerSet struct {
	items []Listener
	index map[uint64]int
}

// add inserts l unless a listener with the same ID is present.
// Reports whether l was added.
func (s *listenerSet) add(l Listener) bool {
	if l == nil {
		return false
	}
	if s.index == nil {
		s.index = make(map[uint64]int)
	}
	id := l.ID()
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.items)
	s.items = append(s.items, l)
	return true
}

// remove deletes l, keeping the order of the others.
// Reports whether l was present.
func (s *listenerSet) remove(l Listener) bool {
	if l == nil {
		return false
	}
	i, ok := s.index[l.ID()]
	if !ok {
		return false
	}
	copy(s.items[i:], s.items[i+1:])
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	delete(s.index, l.ID())
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID()] = j
	}
	return true
}

// contains reports whether a listener with l's ID is present.
func (s *listenerSet) contains(l Listener) bool {
	_, ok := s.index[l.ID()]
	return ok
}

// len returns the number of listeners.
func (s *listenerSet) len() int {
	return len(s.items)
}

// snapshot returns a copy of the members in insertion order.
func (s *listenerSet) snapshot() []Listener {
	out := make([]Listener, len(s.items))
	copy(out, s.items)
	return out
}
