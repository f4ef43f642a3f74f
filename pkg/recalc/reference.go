package recalc

import (
	"context"
	"strings"
	"sync"

	"github.com/vango-dev/recalc/pkg/value"
)

// resolution is where a Reference's path currently ends: at a Variable,
// whose value is read live, or at a fixed value (possibly a path Error).
type resolution struct {
	variable *Variable
	value    value.Value
}

// Reference is an expression node that reads a value by walking a path of
// segments from an origin. The origin is either a Variable, whose value is
// walked as a Context, or a fixed Context such as a Scope.
//
// A Reference belongs to the content of at most one Variable, its host.
// While hosted it listens to its origin Variable and to the Variable its
// path ends at, and re-resolves whenever the origin's value changes.
type Reference struct {
	id     uint64
	origin *Variable
	root   value.Context
	path   []string

	// resolveMu serializes re-resolution.
	resolveMu sync.Mutex

	// mu guards the fields below.
	mu       sync.RWMutex
	host     *Variable
	res      resolution
	resolved bool
	sources  []*Variable
}

// Ref returns a Reference that starts at the value of origin and follows
// path. With an empty path it reads origin itself.
func Ref(origin *Variable, path ...string) *Reference {
	return &Reference{
		id:     nextID(),
		origin: origin,
		path:   clonePath(path),
	}
}

// RefIn returns a Reference that starts at root and follows path.
func RefIn(root value.Context, path ...string) *Reference {
	return &Reference{
		id:   nextID(),
		root: root,
		path: clonePath(path),
	}
}

func clonePath(path []string) []string {
	if len(path) == 0 {
		return nil
	}
	out := make([]string, len(path))
	copy(out, path)
	return out
}

// ID implements Listener.
func (r *Reference) ID() uint64 { return r.id }

// Origin returns the origin Variable, or nil for a Context-rooted Reference.
func (r *Reference) Origin() *Variable { return r.origin }

// Root returns the Context a Context-rooted Reference starts at, or nil.
func (r *Reference) Root() value.Context { return r.root }

// Path returns a copy of the path segments.
func (r *Reference) Path() []string { return clonePath(r.path) }

// Host returns the Variable whose content holds r, or nil.
func (r *Reference) Host() *Variable {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.host
}

// Head returns the Variable the path currently ends at, if any.
func (r *Reference) Head() (*Variable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.res.variable, r.res.variable != nil
}

// Evaluate returns the value at the end of the path. A Variable head is
// read live.
func (r *Reference) Evaluate() value.Value {
	res := r.current()
	if res.variable != nil {
		return res.variable.Value()
	}
	return value.OrNull(res.value)
}

// String renders the Reference as "origin.seg.seg".
func (r *Reference) String() string {
	var b strings.Builder
	switch {
	case r.origin != nil:
		b.WriteString(r.origin.Name())
	case r.root != nil:
		if s, ok := r.root.(interface{ String() string }); ok {
			b.WriteString(s.String())
		} else {
			b.WriteString("$")
		}
	}
	for _, seg := range r.path {
		b.WriteByte('.')
		b.WriteString(seg)
	}
	return b.String()
}

func (r *Reference) children() []Expression { return nil }

// current returns the committed resolution, resolving on the fly when r has
// not been attached.
func (r *Reference) current() resolution {
	r.mu.RLock()
	res, ok := r.res, r.resolved
	r.mu.RUnlock()
	if !ok {
		return r.resolve()
	}
	return res
}

// resolve walks the path against the origin's current value. It mutates
// nothing.
func (r *Reference) resolve() resolution {
	var base value.Context
	switch {
	case r.origin != nil:
		if len(r.path) == 0 {
			return resolution{variable: r.origin}
		}
		ov := r.origin.Value()
		ctx, ok := value.AsContext(ov)
		if !ok {
			return resolution{value: value.NewError(value.ErrPath,
				r.origin.Name()+" is "+ov.Kind().String()+", which has no members", ov).WithSegment(0)}
		}
		base = ctx
	case r.root != nil:
		if len(r.path) == 0 {
			return resolution{value: value.FromContext(r.root)}
		}
		base = r.root
	default:
		return resolution{value: value.NewError(value.ErrPath, "reference has no origin").WithSegment(0)}
	}

	last := len(r.path) - 1
	for i, seg := range r.path[:last] {
		next, ok := base.TryGetSubcontext(seg)
		if !ok {
			return resolution{value: value.Errorf(value.ErrPath,
				"%s: no member %q", r, seg).WithSegment(i)}
		}
		base = next
	}

	seg := r.path[last]
	if sub, ok := base.TryGetSubcontext(seg); ok {
		return resolution{value: value.FromContext(sub)}
	}
	if p, ok := base.TryGetProperty(seg); ok {
		if v, ok := p.(*Variable); ok {
			return resolution{variable: v}
		}
		return resolution{value: value.OrNull(p.PropertyValue())}
	}
	return resolution{value: value.Errorf(value.ErrPath,
		"%s: no member %q", r, seg).WithSegment(last)}
}

// targets lists the Variables a hosted Reference with resolution res reads.
func (r *Reference) targets(res resolution) []*Variable {
	var out []*Variable
	if r.origin != nil {
		out = append(out, r.origin)
	}
	if res.variable != nil && res.variable != r.origin {
		out = append(out, res.variable)
	}
	return out
}

// dependencies returns the forward edges of r: its origin Variable and its
// head Variable.
func (r *Reference) dependencies() []*Variable {
	r.mu.RLock()
	res, ok := r.res, r.resolved
	r.mu.RUnlock()
	if !ok {
		// Unattached references still count their origin.
		res = resolution{}
	}
	return r.targets(res)
}

// attach makes host the owner of r and starts listening to the Variables
// res reads.
func (r *Reference) attach(host *Variable, res resolution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.host = host
	r.commitLocked(res)
}

// detach stops all listening and releases r from its host.
func (r *Reference) detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, src := range r.sources {
		src.removeListener(r)
	}
	r.sources = nil
	r.host = nil
	r.res = resolution{}
	r.resolved = false
}

// commitLocked installs res and moves listener registrations to match it.
// r.mu must be held for writing.
func (r *Reference) commitLocked(res resolution) {
	r.res = res
	r.resolved = true

	next := r.targets(res)
	for _, src := range r.sources {
		if !containsVariable(next, src) {
			src.removeListener(r)
		}
	}
	for _, src := range next {
		if !containsVariable(r.sources, src) {
			src.addListener(r)
		}
	}
	r.sources = next
}

// refresh re-resolves a hosted Reference. A head that would make the host
// depend on itself resolves to a circular-reference Error instead.
// It reports whether the resolution changed.
func (r *Reference) refresh() bool {
	r.resolveMu.Lock()
	defer r.resolveMu.Unlock()

	host := r.Host()
	if host == nil {
		return false
	}
	res := r.resolve()
	if head := res.variable; head != nil {
		if path, found := findCycle(host, []*Variable{head}); found {
			cycle := &CycleError{Target: host, Path: path}
			res = resolution{value: value.NewError(value.ErrCircularReference,
				r.String()+": "+cycle.PathString())}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.host != host {
		return false
	}
	if sameResolution(r.res, res) && r.resolved {
		return false
	}
	r.commitLocked(res)
	return true
}

// SourceChanged implements Listener. A change of the origin re-resolves
// the path; any change updates the host.
func (r *Reference) SourceChanged(ctx context.Context, source *Variable) {
	host := r.Host()
	if host == nil {
		return
	}
	if source == r.origin && len(r.path) > 0 {
		r.refresh()
	}
	host.Update(ctx)
}

func sameResolution(a, b resolution) bool {
	if a.variable != nil || b.variable != nil {
		return a.variable == b.variable
	}
	return value.Equal(value.OrNull(a.value), value.OrNull(b.value))
}

func containsVariable(vs []*Variable, v *Variable) bool {
	for _, x := range vs {
		if x == v {
			return true
		}
	}
	return false
}
