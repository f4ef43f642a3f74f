package function

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps names to functions. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]*Function
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*Function)}
}

// Register adds f. Registering a name twice is an error.
func (r *Registry) Register(f *Function) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[f.name]; exists {
		return fmt.Errorf("function: %q already registered", f.name)
	}
	r.funcs[f.name] = f
	return nil
}

// MustRegister is Register for static catalogs.
func (r *Registry) MustRegister(fs ...*Function) *Registry {
	for _, f := range fs {
		if err := r.Register(f); err != nil {
			panic(err)
		}
	}
	return r
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (*Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.funcs[name]
	return f, ok
}

// Functions returns every registered function sorted by name.
func (r *Registry) Functions() []*Function {
	r.mu.RLock()
	out := make([]*Function, 0, len(r.funcs))
	for _, f := range r.funcs {
		out = append(out, f)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.funcs)
}

// Builtins returns a new registry holding the builtin catalog.
func Builtins() *Registry {
	r := NewRegistry()
	r.MustRegister(mathFunctions...)
	r.MustRegister(logicFunctions...)
	r.MustRegister(textFunctions...)
	r.MustRegister(vectorFunctions...)
	return r
}
