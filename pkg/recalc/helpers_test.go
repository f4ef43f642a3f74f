package recalc

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/vango-dev/recalc/pkg/function"
	"github.com/vango-dev/recalc/pkg/value"
)

// probe returns an identity function that counts its evaluations.
func probe(n *atomic.Int32) *function.Function {
	return function.New("probe", "counts evaluations",
		function.ConstraintSet{function.Fixed(value.GuaranteeAny)},
		func(c function.Call) value.Value {
			n.Add(1)
			return c.Args[0]
		})
}

func num(n int64) Literal {
	return Lit(value.Int(n))
}

func mustSet(t *testing.T, v *Variable, content Expression) {
	t.Helper()
	if err := v.SetContent(context.Background(), content); err != nil {
		t.Fatalf("%s.SetContent(%s): %v", v.Name(), content, err)
	}
}

func expectValue(t *testing.T, v *Variable, want value.Value) {
	t.Helper()
	if got := v.Value(); !value.Equal(got, want) {
		t.Fatalf("%s = %s, want %s", v.Name(), got, want)
	}
}

func expectErrorKind(t *testing.T, v *Variable, kind value.ErrorKind) value.Error {
	t.Helper()
	e, ok := v.Value().(value.Error)
	if !ok {
		t.Fatalf("%s = %s, want %s error", v.Name(), v.Value(), kind)
	}
	if e.ErrorKind() != kind {
		t.Fatalf("%s error kind = %s, want %s (%s)", v.Name(), e.ErrorKind(), kind, e)
	}
	return e
}

// hostContext is an opaque host object addressable by name.
type hostContext struct {
	name  string
	props map[string]value.Property
	subs  map[string]value.Context
}

func (h *hostContext) String() string { return h.name }

func (h *hostContext) TryGetSubcontext(seg string) (value.Context, bool) {
	c, ok := h.subs[seg]
	return c, ok
}

func (h *hostContext) TryGetProperty(seg string) (value.Property, bool) {
	p, ok := h.props[seg]
	return p, ok
}
