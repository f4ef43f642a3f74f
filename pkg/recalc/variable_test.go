package recalc

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vango-dev/recalc/pkg/function"
	"github.com/vango-dev/recalc/pkg/value"
)

func TestSetContentLiteral(t *testing.T) {
	e := New()
	v1 := e.NewVariable("V1")

	if v1.State() != StateUninitialized {
		t.Fatalf("new variable state = %s", v1.State())
	}
	if !value.IsNull(v1.Value()) {
		t.Fatalf("new variable value = %s, want null", v1.Value())
	}

	mustSet(t, v1, num(2))
	expectValue(t, v1, value.Int(2))
	if v1.State() != StateStable {
		t.Fatalf("state = %s, want stable", v1.State())
	}
}

func TestPropagation(t *testing.T) {
	e := New()
	v1 := e.NewVariable("V1")
	v2 := e.NewVariable("V2")

	mustSet(t, v1, num(2))
	mustSet(t, v2, Call(function.Add, Ref(v1), num(3)))
	expectValue(t, v2, value.Int(5))

	mustSet(t, v1, num(10))
	expectValue(t, v2, value.Int(13))
}

func TestUpdateIdempotent(t *testing.T) {
	var evals atomic.Int32
	e := New()
	a := e.NewVariable("a")
	b := e.NewVariable("b")

	mustSet(t, a, num(1))
	mustSet(t, b, Call(probe(&evals), Ref(a)))
	before := evals.Load()

	for i := 0; i < 3; i++ {
		if a.Update(context.Background()) {
			t.Fatalf("Update #%d reported a change for unchanged content", i)
		}
	}
	if got := evals.Load(); got != before {
		t.Fatalf("dependent evaluated %d more times, want 0", got-before)
	}
}

func TestUnchangedValueStopsWave(t *testing.T) {
	var evals atomic.Int32
	e := New()
	a := e.NewVariable("a")
	abs := e.NewVariable("abs")
	c := e.NewVariable("c")

	mustSet(t, a, num(-4))
	mustSet(t, abs, Call(function.Abs, Ref(a)))
	mustSet(t, c, Call(probe(&evals), Ref(abs)))
	before := evals.Load()

	// abs(4) == abs(-4): the wave stops at abs.
	mustSet(t, a, num(4))
	if got := evals.Load(); got != before {
		t.Fatalf("c re-evaluated %d times after an unchanged upstream value", got-before)
	}
	expectValue(t, c, value.Int(4))
}

func TestDiamondConverges(t *testing.T) {
	e := New()
	a := e.NewVariable("a")
	b := e.NewVariable("b")
	c := e.NewVariable("c")
	d := e.NewVariable("d")

	mustSet(t, a, num(1))
	mustSet(t, b, Call(function.Add, Ref(a), num(1)))
	mustSet(t, c, Call(function.Mul, Ref(a), num(2)))
	mustSet(t, d, Call(function.Add, Ref(b), Ref(c)))
	expectValue(t, d, value.Int(4))

	for _, n := range []int64{10, -3, 7} {
		mustSet(t, a, num(n))
		want := value.Int((n + 1) + n*2)
		expectValue(t, d, want)
		for _, v := range []*Variable{b, c, d} {
			if got := v.Content().Evaluate(); !value.Equal(got, v.Value()) {
				t.Fatalf("%s is stale: cached %s, content gives %s", v.Name(), v.Value(), got)
			}
		}
	}
}

func TestErrorValuesPropagate(t *testing.T) {
	e := New()
	a := e.NewVariable("a")
	b := e.NewVariable("b")
	c := e.NewVariable("c")

	mustSet(t, a, Call(function.Div, num(1), num(0)))
	mustSet(t, b, Call(function.Add, Ref(a), num(1)))
	mustSet(t, c, Call(function.IfError, Ref(b), num(0)))

	expectErrorKind(t, a, value.ErrArithmetic)
	be := expectErrorKind(t, b, value.ErrTypeMismatch)
	if be.InputIndex() != 0 {
		t.Errorf("mismatch input = %d, want 0", be.InputIndex())
	}
	if in := be.Inputs(); len(in) != 2 || !value.IsError(in[0]) {
		t.Errorf("mismatch inputs = %v, want upstream error first", in)
	}
	expectValue(t, c, value.Int(0))

	mustSet(t, a, num(4))
	expectValue(t, b, value.Int(5))
	expectValue(t, c, value.Int(5))
}

func TestInputCountErrorIsValue(t *testing.T) {
	v := New().NewVariable("v")
	mustSet(t, v, Call(function.Abs, num(1), num(2)))
	expectErrorKind(t, v, value.ErrInputCount)
}

func TestSubscribe(t *testing.T) {
	e := New()
	a := e.NewVariable("a")

	var mu sync.Mutex
	var changes []ValueChange
	cancel := a.Subscribe(func(c ValueChange) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})

	mustSet(t, a, num(1))
	mustSet(t, a, num(1))
	mustSet(t, a, num(2))
	cancel()
	cancel()
	mustSet(t, a, num(3))

	mu.Lock()
	defer mu.Unlock()
	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2: %v", len(changes), changes)
	}
	if !value.IsNull(changes[0].Old) || !value.Equal(changes[0].New, value.Int(1)) {
		t.Errorf("first change = %s -> %s", changes[0].Old, changes[0].New)
	}
	if !value.Equal(changes[1].Old, value.Int(1)) || !value.Equal(changes[1].New, value.Int(2)) {
		t.Errorf("second change = %s -> %s", changes[1].Old, changes[1].New)
	}
	if changes[1].Variable != a {
		t.Errorf("change variable = %v, want a", changes[1].Variable)
	}
}

func TestSubscribersSeeDownstreamChanges(t *testing.T) {
	e := New()
	a := e.NewVariable("a")
	b := e.NewVariable("b")
	mustSet(t, a, num(1))
	mustSet(t, b, Call(function.Neg, Ref(a)))

	var got atomic.Value
	b.Subscribe(func(c ValueChange) { got.Store(c.New) })

	mustSet(t, a, num(5))
	if v, _ := got.Load().(value.Value); !value.Equal(v, value.Int(-5)) {
		t.Fatalf("subscriber saw %v, want -5", v)
	}
}

func TestDispose(t *testing.T) {
	e := New()
	a := e.NewVariable("a")
	b := e.NewVariable("b")
	mustSet(t, a, num(1))
	mustSet(t, b, Call(function.Add, Ref(a), num(1)))

	if n := a.listenerCount(); n != 1 {
		t.Fatalf("a has %d listeners, want 1", n)
	}

	b.Dispose()
	b.Dispose()

	if !b.Disposed() {
		t.Fatal("Disposed() = false after Dispose")
	}
	if n := a.listenerCount(); n != 0 {
		t.Fatalf("a has %d listeners after dispose, want 0", n)
	}
	if err := b.SetContent(context.Background(), num(9)); !errors.Is(err, ErrDisposed) {
		t.Fatalf("SetContent after dispose = %v, want ErrDisposed", err)
	}
	expectValue(t, b, value.Int(2))

	mustSet(t, a, num(50))
	expectValue(t, b, value.Int(2))
}

func TestReferenceInUse(t *testing.T) {
	e := New()
	a := e.NewVariable("a")
	b := e.NewVariable("b")
	c := e.NewVariable("c")
	r := Ref(a)

	mustSet(t, b, r)
	if err := c.SetContent(context.Background(), r); !errors.Is(err, ErrReferenceInUse) {
		t.Fatalf("reusing a hosted reference = %v, want ErrReferenceInUse", err)
	}

	// The same host may keep a reference across content changes.
	mustSet(t, b, Call(function.Neg, r))
	if r.Host() != b {
		t.Fatalf("host = %v, want b", r.Host())
	}
	mustSet(t, b, num(0))
	if r.Host() != nil {
		t.Fatalf("dropped reference still hosted by %v", r.Host())
	}
	mustSet(t, c, r)
}

func TestDependenciesAndDependents(t *testing.T) {
	e := New()
	a := e.NewVariable("a")
	b := e.NewVariable("b")
	c := e.NewVariable("c")

	mustSet(t, a, num(1))
	mustSet(t, b, num(2))
	mustSet(t, c, Call(function.Add, Ref(a), Call(function.Add, Ref(b), Ref(a))))

	deps := c.Dependencies()
	if len(deps) != 2 || deps[0] != a || deps[1] != b {
		t.Fatalf("Dependencies = %v, want [a b]", deps)
	}
	if got := a.Dependents(); len(got) != 1 || got[0] != c {
		t.Fatalf("a.Dependents = %v, want [c]", got)
	}
	if got := len(c.References()); got != 3 {
		t.Fatalf("c has %d references, want 3", got)
	}

	mustSet(t, c, Ref(b))
	if got := a.Dependents(); len(got) != 0 {
		t.Fatalf("a.Dependents after rewrite = %v, want none", got)
	}
}

func TestConcurrentInputsConverge(t *testing.T) {
	e := New()
	const n = 16
	inputs := make([]*Variable, n)
	args := make([]Expression, n)
	for i := range inputs {
		inputs[i] = e.NewVariable("in")
		mustSet(t, inputs[i], num(0))
		args[i] = Ref(inputs[i])
	}
	total := e.NewVariable("total")
	mustSet(t, total, Call(function.Sum, args...))

	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in *Variable) {
			defer wg.Done()
			for k := int64(1); k <= 20; k++ {
				if err := in.SetContent(context.Background(), num(k*int64(i+1))); err != nil {
					t.Error(err)
					return
				}
			}
		}(i, in)
	}
	wg.Wait()

	var want int64
	for i := range inputs {
		want += 20 * int64(i+1)
	}
	expectValue(t, total, value.Int(want))
}

func TestConcurrentReadersDuringWrites(t *testing.T) {
	e := New()
	a := e.NewVariable("a")
	b := e.NewVariable("b")
	mustSet(t, a, num(0))
	mustSet(t, b, Call(function.Mul, Ref(a), num(2)))

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				if _, ok := b.Value().(value.Number); !ok {
					t.Error("b briefly held a non-number")
					return
				}
				_ = b.Dependencies()
			}
		}()
	}
	for k := int64(1); k <= 100; k++ {
		mustSet(t, a, num(k))
	}
	close(done)
	wg.Wait()
	expectValue(t, b, value.Int(200))
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUninitialized, "uninitialized"},
		{StateStable, "stable"},
		{StateRecomputing, "recomputing"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
