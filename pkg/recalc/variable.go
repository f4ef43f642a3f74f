package recalc

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/recalc/pkg/value"
)

// State is the lifecycle state of a Variable.
type State int32

const (
	// StateUninitialized is the state of a Variable that has never been updated.
	StateUninitialized State = iota
	// StateStable means the value matches the content.
	StateStable
	// StateRecomputing is held while Update evaluates the content.
	StateRecomputing
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStable:
		return "stable"
	case StateRecomputing:
		return "recomputing"
	default:
		return "unknown"
	}
}

// ValueChange describes one value transition of a Variable.
type ValueChange struct {
	Variable *Variable
	Old      value.Value
	New      value.Value
}

type subscription struct {
	id uint64
	fn func(ValueChange)
}

// Variable is a reactive cell: it owns a content expression and caches the
// value that expression evaluates to. References embedded in other
// Variables' content listen to it and are notified when its value changes.
//
// A Variable is safe for concurrent use.
type Variable struct {
	id     uint64
	name   string
	engine *Engine
	scope  *Scope

	// structure guards content, refs and disposed.
	structure upgradeableRWMutex
	content   Expression
	refs      []*Reference
	disposed  bool

	// valueLock guards value.
	valueLock upgradeableRWMutex
	value     value.Value

	// listeners are the References currently reading this Variable.
	// Membership does not keep a Reference alive.
	listeners listenerSet
	listenMu  sync.Mutex

	subs  []subscription
	subMu sync.Mutex

	state atomic.Int32
}

// ID returns the unique identifier of v.
func (v *Variable) ID() uint64 { return v.id }

// Name returns the display name of v.
func (v *Variable) Name() string { return v.name }

// Scope returns the Scope that defined v, or nil for a free Variable.
func (v *Variable) Scope() *Scope { return v.scope }

// String returns the display name of v.
func (v *Variable) String() string { return v.name }

// Engine returns the engine v is bound to.
func (v *Variable) Engine() *Engine { return v.engine }

// State returns the current lifecycle state.
func (v *Variable) State() State { return State(v.state.Load()) }

// Value returns the cached value. It is never nil.
func (v *Variable) Value() value.Value {
	v.valueLock.RLock()
	defer v.valueLock.RUnlock()
	return v.value
}

// PropertyValue makes a Variable addressable as a live leaf of a Context.
func (v *Variable) PropertyValue() value.Value {
	return v.Value()
}

// Content returns the current content expression.
func (v *Variable) Content() Expression {
	v.structure.RLock()
	defer v.structure.RUnlock()
	return v.content
}

// References returns the References embedded in the current content.
func (v *Variable) References() []*Reference {
	v.structure.RLock()
	defer v.structure.RUnlock()
	out := make([]*Reference, len(v.refs))
	copy(out, v.refs)
	return out
}

// Dependencies returns the Variables v reads through its References,
// without duplicates.
func (v *Variable) Dependencies() []*Variable {
	return dedupe(nil, v.References())
}

// Dependents returns the Variables whose content currently reads v.
func (v *Variable) Dependents() []*Variable {
	v.listenMu.Lock()
	listeners := v.listeners.snapshot()
	v.listenMu.Unlock()

	seen := make(map[*Variable]bool)
	var out []*Variable
	for _, l := range listeners {
		r, ok := l.(*Reference)
		if !ok {
			continue
		}
		if h := r.Host(); h != nil && !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	return out
}

// Disposed reports whether Dispose has been called.
func (v *Variable) Disposed() bool {
	v.structure.RLock()
	defer v.structure.RUnlock()
	return v.disposed
}

// Subscribe registers fn to be called after every value change of v.
// Callbacks run on the goroutine that performed the update, before the
// change propagates to dependents. The returned function cancels the
// subscription.
func (v *Variable) Subscribe(fn func(ValueChange)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	id := nextID()
	v.subMu.Lock()
	v.subs = append(v.subs, subscription{id: id, fn: fn})
	v.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.subMu.Lock()
			defer v.subMu.Unlock()
			for i, s := range v.subs {
				if s.id == id {
					v.subs = append(v.subs[:i:i], v.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// SetContent replaces the content of v and brings v and everything
// downstream of it up to date.
//
// If the new content would make v depend on itself, nothing changes and a
// *CycleError is returned.
func (v *Variable) SetContent(ctx context.Context, content Expression) (err error) {
	e := v.engine
	ctx, span := e.tracer.Start(ctx, "recalc.SetContent",
		trace.WithAttributes(attribute.String("recalc.variable", v.name)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if content == nil {
		content = Lit(value.Null)
	}
	refs := collectReferences(content)
	for _, r := range refs {
		if h := r.Host(); h != nil && h != v {
			return ErrReferenceInUse
		}
	}

	v.structure.UpgradeableLock()
	if v.disposed {
		v.structure.UpgradeableUnlock()
		return ErrDisposed
	}

	added, removed := diffReferences(v.refs, refs)
	pre := make([]resolution, len(added))
	for i, r := range added {
		pre[i] = r.resolve()
	}
	restore := make([]resolution, len(removed))
	for i, r := range removed {
		restore[i] = r.current()
	}

	if path, found := findCycle(v, v.candidateDependencies(refs, added, pre)); found {
		v.structure.UpgradeableUnlock()
		return v.rejectCycle(path)
	}

	v.structure.Upgrade()
	oldContent, oldRefs := v.content, v.refs
	v.content, v.refs = content, refs
	for _, r := range removed {
		r.detach()
	}
	for i, r := range added {
		r.attach(v, pre[i])
	}
	v.structure.Downgrade()

	// A concurrent commit elsewhere may have closed a loop through v.
	if path, found := findCycle(v, dedupe(nil, refs)); found {
		v.structure.Upgrade()
		v.content, v.refs = oldContent, oldRefs
		for _, r := range added {
			r.detach()
		}
		for i, r := range removed {
			r.attach(v, restore[i])
		}
		v.structure.Downgrade()
		v.structure.UpgradeableUnlock()
		return v.rejectCycle(path)
	}
	v.structure.UpgradeableUnlock()

	for _, r := range added {
		r.refresh()
	}
	v.Update(ctx)
	return nil
}

// candidateDependencies lists the Variables the new content would read:
// pre-resolved targets for new References, current ones for kept References.
func (v *Variable) candidateDependencies(refs, added []*Reference, pre []resolution) []*Variable {
	fresh := make(map[*Reference]resolution, len(added))
	for i, r := range added {
		fresh[r] = pre[i]
	}
	var deps []*Variable
	for _, r := range refs {
		if res, ok := fresh[r]; ok {
			deps = append(deps, r.targets(res)...)
			continue
		}
		deps = append(deps, r.dependencies()...)
	}
	return deps
}

func (v *Variable) rejectCycle(path []*Variable) error {
	err := &CycleError{Target: v, Path: path}
	v.engine.logger.Warn("circular dependency rejected",
		"variable", v.name,
		"path", err.PathString())
	v.engine.observer.CycleRejected(v, path)
	return err
}

// Update re-evaluates the content of v. When the value changes, it notifies
// subscribers and then every listener, waiting until the whole downstream
// wave has settled. It reports whether the value changed.
func (v *Variable) Update(ctx context.Context) bool {
	e := v.engine
	depth := waveDepth(ctx)
	if depth > e.maxDepth {
		e.logger.Error("propagation depth exceeded",
			"variable", v.name,
			"depth", depth,
			"limit", e.maxDepth)
		return false
	}

	ctx, span := e.tracer.Start(ctx, "recalc.Update",
		trace.WithAttributes(
			attribute.String("recalc.variable", v.name),
			attribute.Int("recalc.depth", depth),
		))
	defer span.End()
	start := time.Now()

	v.valueLock.UpgradeableLock()
	v.structure.RLock()
	content, disposed := v.content, v.disposed
	v.structure.RUnlock()
	if disposed {
		v.valueLock.UpgradeableUnlock()
		return false
	}

	v.state.Store(int32(StateRecomputing))
	next := value.OrNull(content.Evaluate())
	old := v.value
	changed := !value.Equal(old, next)
	if changed {
		v.valueLock.Upgrade()
		v.value = next
		v.valueLock.Downgrade()
	}
	v.state.Store(int32(StateStable))
	v.valueLock.UpgradeableUnlock()

	span.SetAttributes(attribute.Bool("recalc.changed", changed))
	if changed {
		e.logger.Debug("variable updated",
			"variable", v.name,
			"value", next.String())
		if ev, ok := next.(value.Error); ok {
			e.observer.ErrorValueProduced(v, ev)
		}
		v.publish(ValueChange{Variable: v, Old: old, New: next})

		v.listenMu.Lock()
		listeners := v.listeners.snapshot()
		v.listenMu.Unlock()
		e.notify(ctx, v, listeners)
	}
	e.observer.UpdateObserved(v, changed, time.Since(start))
	return changed
}

func (v *Variable) publish(change ValueChange) {
	v.subMu.Lock()
	subs := make([]subscription, len(v.subs))
	copy(subs, v.subs)
	v.subMu.Unlock()

	for _, s := range subs {
		s.fn(change)
	}
}

// Dispose detaches every Reference in the content of v and drops its
// subscriptions. Its last value stays readable; SetContent fails with
// ErrDisposed afterwards.
func (v *Variable) Dispose() {
	v.structure.Lock()
	if v.disposed {
		v.structure.Unlock()
		return
	}
	v.disposed = true
	refs := v.refs
	v.refs = nil
	for _, r := range refs {
		r.detach()
	}
	v.structure.Unlock()

	v.subMu.Lock()
	v.subs = nil
	v.subMu.Unlock()
}

func (v *Variable) addListener(l Listener) {
	v.listenMu.Lock()
	v.listeners.add(l)
	v.listenMu.Unlock()
}

func (v *Variable) removeListener(l Listener) {
	v.listenMu.Lock()
	v.listeners.remove(l)
	v.listenMu.Unlock()
}

func (v *Variable) listenerCount() int {
	v.listenMu.Lock()
	defer v.listenMu.Unlock()
	return v.listeners.len()
}

// diffReferences splits the change from old to next into the References
// that appear only in next and those that appear only in old.
func diffReferences(old, next []*Reference) (added, removed []*Reference) {
	inOld := make(map[*Reference]bool, len(old))
	for _, r := range old {
		inOld[r] = true
	}
	inNext := make(map[*Reference]bool, len(next))
	for _, r := range next {
		inNext[r] = true
		if !inOld[r] {
			added = append(added, r)
		}
	}
	for _, r := range old {
		if !inNext[r] {
			removed = append(removed, r)
		}
	}
	return added, removed
}

// dedupe appends the dependencies of refs to dst, skipping repeats.
func dedupe(dst []*Variable, refs []*Reference) []*Variable {
	seen := make(map[*Variable]bool, len(dst))
	for _, d := range dst {
		seen[d] = true
	}
	for _, r := range refs {
		for _, d := range r.dependencies() {
			if !seen[d] {
				seen[d] = true
				dst = append(dst, d)
			}
		}
	}
	return dst
}
