package function

import (
	"strings"
	"testing"

	"github.com/vango-dev/recalc/pkg/value"
)

func args(vs ...value.Value) []value.Value { return vs }

func mustError(t *testing.T, v value.Value, kind value.ErrorKind) value.Error {
	t.Helper()
	e, ok := v.(value.Error)
	if !ok {
		t.Fatalf("expected %v error, got %v", kind, v)
	}
	if e.ErrorKind() != kind {
		t.Fatalf("error kind = %v, want %v (%s)", e.ErrorKind(), kind, e.Message())
	}
	return e
}

func TestAbsEvaluate(t *testing.T) {
	got := Abs.Evaluate(args(value.Int(-5)))
	if !got.Equal(value.Int(5)) {
		t.Fatalf("abs(-5) = %v, want 5", got)
	}
}

func TestInputCountErrorIsValue(t *testing.T) {
	e := mustError(t, Abs.Evaluate(args(value.Int(1), value.Int(2))), value.ErrInputCount)

	if e.Function() != "abs" {
		t.Errorf("Function() = %q, want abs", e.Function())
	}
	if !strings.Contains(e.Message(), "abs") || !strings.Contains(e.Message(), "exactly 1 argument") {
		t.Errorf("message should name function and range: %q", e.Message())
	}
	if len(e.Inputs()) != 2 {
		t.Errorf("error should carry the offending inputs, got %v", e.Inputs())
	}
}

func TestInputCountRangeText(t *testing.T) {
	tests := []struct {
		f    *Function
		in   []value.Value
		want string
	}{
		{Round, args(), "between 1 and 2 arguments"},
		{Min, args(), "at least 1 argument"},
		{If, args(value.True), "exactly 3 arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.f.Name(), func(t *testing.T) {
			e := mustError(t, tt.f.Evaluate(tt.in), value.ErrInputCount)
			if !strings.Contains(e.Message(), tt.want) {
				t.Errorf("message %q should contain %q", e.Message(), tt.want)
			}
		})
	}
}

func TestTypeMismatchIdentifiesSlot(t *testing.T) {
	e := mustError(t, Add.Evaluate(args(value.Int(1), value.Str("x"))), value.ErrTypeMismatch)
	if e.ConstraintIndex() != 0 || e.InputIndex() != 1 {
		t.Fatalf("mismatch at constraint %d input %d, want 0/1", e.ConstraintIndex(), e.InputIndex())
	}
}

func TestTypeMismatchBestFit(t *testing.T) {
	// round(Real) | round(Real, Integer): with two inputs only signature 1
	// applies, and the second input is the first to fail.
	e := mustError(t, Round.Evaluate(args(value.Int(1), value.MustNumber("0.5"))), value.ErrTypeMismatch)
	if e.ConstraintIndex() != 1 || e.InputIndex() != 1 {
		t.Fatalf("best fit = %d/%d, want 1/1", e.ConstraintIndex(), e.InputIndex())
	}

	// lt(Real, Real) | lt(Text, Text): (Text, Real) fails signature 0 at
	// input 0 and signature 1 at input 1, so signature 1 is the best fit.
	e = mustError(t, Lt.Evaluate(args(value.Str("a"), value.Int(1))), value.ErrTypeMismatch)
	if e.ConstraintIndex() != 1 || e.InputIndex() != 1 {
		t.Fatalf("best fit = %d/%d, want 1/1", e.ConstraintIndex(), e.InputIndex())
	}
}

func TestFixedPreferredOverVariadic(t *testing.T) {
	// sum(Vector) is declared before sum(Real...); one vector input picks
	// the fixed signature, one number falls through to the variadic one.
	if got := Sum.Evaluate(args(value.Vec(value.Int(1), value.Int(2)))); !got.Equal(value.Int(3)) {
		t.Fatalf("sum([1,2]) = %v", got)
	}
	if got := Sum.Evaluate(args(value.Int(4))); !got.Equal(value.Int(4)) {
		t.Fatalf("sum(4) = %v", got)
	}
	if got := Sum.Evaluate(args()); !got.Equal(value.Int(0)) {
		t.Fatalf("sum() = %v", got)
	}
}

func TestErrorInputsPropagateAsMismatch(t *testing.T) {
	upstream := Div.Evaluate(args(value.Int(1), value.Int(0)))
	mustError(t, upstream, value.ErrArithmetic)

	e := mustError(t, Add.Evaluate(args(upstream, value.Int(1))), value.ErrTypeMismatch)
	if !e.Inputs()[0].Equal(upstream) {
		t.Fatal("mismatch should carry the upstream error as input")
	}

	// Functions with Any slots handle errors directly.
	if got := IsError.Evaluate(args(upstream)); !got.Equal(value.True) {
		t.Fatalf("iserror = %v", got)
	}
	if got := IfError.Evaluate(args(upstream, value.Int(7))); !got.Equal(value.Int(7)) {
		t.Fatalf("iferror = %v", got)
	}
}

func TestResolveOrder(t *testing.T) {
	cs := ConstraintSet{
		Variadic(0, value.GuaranteeAny),
		Fixed(value.GuaranteeText),
		Fixed(value.GuaranteeAny),
	}
	sig, _, ok := cs.Resolve(args(value.Str("x")))
	if !ok || sig != 1 {
		t.Fatalf("Resolve = %d, %v; want fixed signature 1", sig, ok)
	}
	sig, _, ok = cs.Resolve(args(value.Int(1)))
	if !ok || sig != 2 {
		t.Fatalf("Resolve = %d, %v; want fixed signature 2", sig, ok)
	}
	sig, _, ok = cs.Resolve(args(value.Int(1), value.Int(2)))
	if !ok || sig != 0 {
		t.Fatalf("Resolve = %d, %v; want variadic signature 0", sig, ok)
	}
}

func TestConstraintDescribe(t *testing.T) {
	if got := Round.Constraints().Describe(); got != "(Real) | (Real, Integer)" {
		t.Errorf("Describe() = %q", got)
	}
	if got := Concat.Constraints().Describe(); got != "(NonError...)" {
		t.Errorf("Describe() = %q", got)
	}
	if got := Abs.String(); got != "abs(Real)" {
		t.Errorf("String() = %q", got)
	}
}

func TestNewPanicsWithoutSignatures(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New("broken", "", nil, func(Call) value.Value { return value.Null })
}
