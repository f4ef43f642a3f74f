package recalc

import (
	"sort"
	"sync"

	"github.com/vango-dev/recalc/pkg/value"
)

// Scope is a named host Context holding Variables and nested Scopes.
// References rooted at a Scope address its members by name:
//
//	s := recalc.NewScope(engine, "sheet")
//	a := s.Define("A1")
//	ref := recalc.RefIn(s, "A1")
type Scope struct {
	engine *Engine
	name   string
	parent *Scope

	mu       sync.RWMutex
	vars     map[string]*Variable
	children map[string]*Scope
}

// NewScope creates an empty Scope whose Variables are bound to e.
// A nil e uses the default engine.
func NewScope(e *Engine, name string) *Scope {
	if e == nil {
		e = defaultEngine
	}
	return &Scope{
		engine:   e,
		name:     name,
		vars:     make(map[string]*Variable),
		children: make(map[string]*Scope),
	}
}

// Name returns the scope name.
func (s *Scope) Name() string { return s.name }

// String returns the scope name.
func (s *Scope) String() string { return s.name }

// Engine returns the engine new Variables are bound to.
func (s *Scope) Engine() *Engine { return s.engine }

// Define returns the Variable called name, creating it when absent.
func (s *Scope) Define(name string) *Variable {
	s.mu.RLock()
	v, ok := s.vars[name]
	s.mu.RUnlock()
	if ok {
		return v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.vars[name]; ok {
		return v
	}
	v = s.engine.NewVariable(name)
	v.scope = s
	s.vars[name] = v
	return v
}

// Variable looks up a Variable by name.
func (s *Scope) Variable(name string) (*Variable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

// Child returns the nested Scope called name, creating it when absent.
func (s *Scope) Child(name string) *Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.children[name]; ok {
		return c
	}
	c := NewScope(s.engine, name)
	c.parent = s
	s.children[name] = c
	return c
}

// Names returns the Variable names in lexical order.
func (s *Scope) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Variables returns the Variables ordered by name.
func (s *Scope) Variables() []*Variable {
	names := s.Names()
	out := make([]*Variable, 0, len(names))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, name := range names {
		if v, ok := s.vars[name]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Parent returns the enclosing Scope, or nil for an outermost one.
func (s *Scope) Parent() *Scope { return s.parent }

// Path returns the names of the Scopes from the outermost one's child down
// to s. The outermost Scope has an empty path.
func (s *Scope) Path() []string {
	var rev []string
	for c := s; c.parent != nil; c = c.parent {
		rev = append(rev, c.name)
	}
	path := make([]string, len(rev))
	for i, name := range rev {
		path[len(rev)-1-i] = name
	}
	return path
}

// Children returns the nested Scopes ordered by name.
func (s *Scope) Children() []*Scope {
	s.mu.RLock()
	out := make([]*Scope, 0, len(s.children))
	for _, c := range s.children {
		out = append(out, c)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// TryGetSubcontext implements value.Context over nested Scopes.
func (s *Scope) TryGetSubcontext(segment string) (value.Context, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.children[segment]
	if !ok {
		return nil, false
	}
	return c, true
}

// TryGetProperty implements value.Context. Members are returned as live
// *Variable properties.
func (s *Scope) TryGetProperty(segment string) (value.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[segment]
	if !ok {
		return nil, false
	}
	return v, true
}
