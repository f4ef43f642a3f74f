package recalc

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vango-dev/recalc/pkg/function"
	"github.com/vango-dev/recalc/pkg/value"
)

func TestCycleRejectedAtomically(t *testing.T) {
	e := New()
	v1 := e.NewVariable("V1")
	v2 := e.NewVariable("V2")

	mustSet(t, v2, num(1))
	v1Content := Call(function.Add, Ref(v2), num(1))
	mustSet(t, v1, v1Content)
	v2Content := v2.Content()

	err := v2.SetContent(context.Background(), Ref(v1))
	if !errors.Is(err, ErrCircularDependency) {
		t.Fatalf("SetContent = %v, want circular dependency", err)
	}
	var ce *CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("error %T is not a *CycleError", err)
	}
	if got := ce.PathString(); got != "V2 -> V1 -> V2" {
		t.Errorf("cycle path = %q", got)
	}

	if v1.Content() != Expression(v1Content) {
		t.Error("V1 content changed")
	}
	if v2.Content() != v2Content {
		t.Error("V2 content changed")
	}
	if len(v2.References()) != 0 {
		t.Errorf("V2 gained references: %v", v2.References())
	}
	if n := v1.listenerCount(); n != 0 {
		t.Errorf("V1 gained %d listeners", n)
	}
	expectValue(t, v1, value.Int(2))
	expectValue(t, v2, value.Int(1))
}

func TestSelfReferenceRejected(t *testing.T) {
	v := New().NewVariable("V")
	mustSet(t, v, num(1))

	err := v.SetContent(context.Background(), Call(function.Add, Ref(v), num(1)))
	var ce *CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("SetContent = %v, want *CycleError", err)
	}
	if got := ce.PathString(); got != "V -> V" {
		t.Errorf("cycle path = %q", got)
	}
	expectValue(t, v, value.Int(1))
}

func TestTransitiveCycleRejected(t *testing.T) {
	e := New()
	a := e.NewVariable("a")
	b := e.NewVariable("b")
	c := e.NewVariable("c")
	mustSet(t, a, Ref(b))
	mustSet(t, b, Ref(c))

	err := c.SetContent(context.Background(), Call(function.Neg, Ref(a)))
	var ce *CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("SetContent = %v, want *CycleError", err)
	}
	if got := ce.PathString(); got != "c -> a -> b -> c" {
		t.Errorf("cycle path = %q", got)
	}
	if len(ce.Path) != 3 || ce.Target != c {
		t.Errorf("path = %v target = %v", ce.Path, ce.Target)
	}
}

func TestCycleThroughPathHead(t *testing.T) {
	e := New()
	a := e.NewVariable("a")
	b := e.NewVariable("b")
	host := &hostContext{name: "h", props: map[string]value.Property{"b": b}}
	mustSet(t, a, Lit(value.NewObject(host)))

	if err := b.SetContent(context.Background(), Ref(a, "b")); !errors.Is(err, ErrCircularDependency) {
		t.Fatalf("SetContent = %v, want circular dependency", err)
	}
}

func TestWouldCreateCycle(t *testing.T) {
	e := New()
	a := e.NewVariable("a")
	b := e.NewVariable("b")
	c := e.NewVariable("c")
	mustSet(t, b, Ref(a))

	if found, path := WouldCreateCycle(a, []*Reference{Ref(b)}); !found || len(path) != 2 || path[0] != b || path[1] != a {
		t.Errorf("WouldCreateCycle(a, [b]) = %v %v, want true [b a]", found, path)
	}
	if found, _ := WouldCreateCycle(a, []*Reference{Ref(c), nil}); found {
		t.Error("WouldCreateCycle(a, [c]) = true")
	}
	if found, path := WouldCreateCycle(a, []*Reference{Ref(a)}); !found || len(path) != 1 {
		t.Errorf("WouldCreateCycle(a, [a]) = %v %v", found, path)
	}
	if len(a.References()) != 0 {
		t.Error("WouldCreateCycle mutated the graph")
	}
}

func TestFindCycleOnLattice(t *testing.T) {
	// A wide diamond lattice: each layer reads every node of the previous one.
	e := New()
	const width, depth = 8, 6
	prev := []*Variable{e.NewVariable("root")}
	mustSet(t, prev[0], num(1))
	for d := 0; d < depth; d++ {
		layer := make([]*Variable, width)
		for i := range layer {
			layer[i] = e.NewVariable("n")
			args := make([]Expression, len(prev))
			for j, p := range prev {
				args[j] = Ref(p)
			}
			mustSet(t, layer[i], Call(function.Sum, args...))
		}
		prev = layer
	}
	top := e.NewVariable("top")
	if path, found := findCycle(top, prev); found {
		t.Fatalf("unexpected cycle %v", path)
	}
	if _, found := findCycle(prev[0].Dependencies()[0], prev); !found {
		t.Fatal("expected to reach the layer below")
	}
}

func TestConcurrentOppositeEdges(t *testing.T) {
	for i := 0; i < 50; i++ {
		e := New()
		a := e.NewVariable("a")
		b := e.NewVariable("b")

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs[0] = a.SetContent(context.Background(), Ref(b))
		}()
		go func() {
			defer wg.Done()
			errs[1] = b.SetContent(context.Background(), Ref(a))
		}()
		wg.Wait()

		if errs[0] == nil && errs[1] == nil {
			t.Fatal("both halves of a cycle were accepted")
		}
		for _, err := range errs {
			if err != nil && !errors.Is(err, ErrCircularDependency) {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if found, path := WouldCreateCycle(a, a.References()); found {
			t.Fatalf("graph holds a cycle: %v", path)
		}
	}
}
