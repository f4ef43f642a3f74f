package value

import (
	"testing"
)

func TestNumberEquality(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same integer", Int(2), Int(2), true},
		{"integer vs trailing zero", Int(2), MustNumber("2.0"), true},
		{"different", Int(2), Int(3), false},
		{"number vs text", Int(2), Str("2"), false},
		{"negative zero", MustNumber("-0"), Int(0), true},
		{"decimal", Dec(15, -1), MustNumber("1.50"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if tt.want && Hash(tt.a) != Hash(tt.b) {
				t.Errorf("Hash(%v) != Hash(%v) for equal values", tt.a, tt.b)
			}
		})
	}
}

func TestNumberGuarantee(t *testing.T) {
	if !Int(4).Guarantee().Satisfies(GuaranteeInteger) {
		t.Error("4 should satisfy Integer")
	}
	if !MustNumber("4.00").Guarantee().Satisfies(GuaranteeInteger) {
		t.Error("4.00 should satisfy Integer")
	}
	if MustNumber("4.5").Guarantee().Satisfies(GuaranteeInteger) {
		t.Error("4.5 should not satisfy Integer")
	}
	if !MustNumber("4.5").Guarantee().Satisfies(GuaranteeRealAny) {
		t.Error("4.5 should satisfy RealAny")
	}
	if Int(1).Guarantee().Satisfies(GuaranteeText | GuaranteeBoolean) {
		t.Error("number should not satisfy Text|Boolean")
	}
}

func TestNumberArithmetic(t *testing.T) {
	sum, err := Int(2).Add(Int(3))
	if err != nil || !sum.Equal(Int(5)) {
		t.Fatalf("2+3 = %v, %v", sum, err)
	}

	q, err := Int(1).Quo(Int(4))
	if err != nil || q.String() != "0.25" {
		t.Fatalf("1/4 = %v, %v", q, err)
	}

	if _, err := Int(1).Quo(Int(0)); err == nil {
		t.Fatal("expected division by zero error")
	}

	r, err := MustNumber("2.345").Round(2)
	if err != nil || r.String() != "2.35" {
		t.Fatalf("round(2.345, 2) = %v, %v", r, err)
	}

	if got := Int(-5).Abs(); !got.Equal(Int(5)) {
		t.Fatalf("abs(-5) = %v", got)
	}

	if n, ok := MustNumber("7.0").Int64(); !ok || n != 7 {
		t.Fatalf("Int64(7.0) = %d, %v", n, ok)
	}
	if _, ok := MustNumber("7.5").Int64(); ok {
		t.Fatal("Int64(7.5) should fail")
	}
}

func TestParseNumberRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "abc", "1..2", "NaN", "Infinity"} {
		if _, err := ParseNumber(s); err == nil {
			t.Errorf("ParseNumber(%q) should fail", s)
		}
	}
}

func TestZeroNumberIsZero(t *testing.T) {
	var n Number
	if !n.Equal(Int(0)) || n.String() != "0" {
		t.Fatalf("zero Number = %v", n)
	}
}

func TestVectorProperties(t *testing.T) {
	v := Vec(Int(10), Int(20), Int(30))

	tests := []struct {
		segment string
		want    Value
	}{
		{PropLength, Int(3)},
		{PropMin, Int(0)},
		{PropMax, Int(2)},
		{"1", Int(20)},
	}
	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			p, ok := v.TryGetProperty(tt.segment)
			if !ok {
				t.Fatalf("TryGetProperty(%q) not found", tt.segment)
			}
			if got := p.PropertyValue(); !got.Equal(tt.want) {
				t.Errorf("TryGetProperty(%q) = %v, want %v", tt.segment, got, tt.want)
			}
		})
	}

	for _, seg := range []string{"3", "-1", "size"} {
		if _, ok := v.TryGetProperty(seg); ok {
			t.Errorf("TryGetProperty(%q) should fail", seg)
		}
	}
}

func TestEmptyVectorHasNoBounds(t *testing.T) {
	v := Vec()
	if p, ok := v.TryGetProperty(PropLength); !ok || !p.PropertyValue().Equal(Int(0)) {
		t.Fatal("empty vector length should be 0")
	}
	if _, ok := v.TryGetProperty(PropMin); ok {
		t.Fatal("empty vector should not have min")
	}
	if _, ok := v.TryGetProperty(PropMax); ok {
		t.Fatal("empty vector should not have max")
	}
}

func TestVectorSubcontext(t *testing.T) {
	inner := Vec(Str("a"), Str("b"))
	outer := Vec(Int(1), inner)

	ctx, ok := outer.TryGetSubcontext("1")
	if !ok {
		t.Fatal("expected nested vector to be a subcontext")
	}
	p, ok := ctx.TryGetProperty("0")
	if !ok || !p.PropertyValue().Equal(Str("a")) {
		t.Fatalf("outer[1][0] = %v", p)
	}

	if _, ok := outer.TryGetSubcontext("0"); ok {
		t.Fatal("number element should not be a subcontext")
	}
}

func TestVectorEqualityAndHash(t *testing.T) {
	a := Vec(Int(1), Str("x"), Vec(True))
	b := Vec(MustNumber("1.0"), Str("x"), Vec(True))
	c := Vec(Int(1), Str("x"))

	if !a.Equal(b) || Hash(a) != Hash(b) {
		t.Fatal("structurally equal vectors should be equal and hash equal")
	}
	if a.Equal(c) {
		t.Fatal("vectors of different length should differ")
	}
}

func TestVectorIsImmutable(t *testing.T) {
	elems := []Value{Int(1), Int(2)}
	v := Vec(elems...)
	elems[0] = Int(99)
	if !v.At(0).Equal(Int(1)) {
		t.Fatal("vector should not alias its constructor slice")
	}
	out := v.Elements()
	out[1] = Int(99)
	if !v.At(1).Equal(Int(2)) {
		t.Fatal("vector should not alias Elements result")
	}
}

func TestErrorValue(t *testing.T) {
	e := NewError(ErrTypeMismatch, "bad input", Str("x")).WithFunction("abs").WithMismatch(0, 0)

	if e.Kind() != KindError || !e.Guarantee().Satisfies(GuaranteeError) {
		t.Fatal("error value should report KindError and GuaranteeError")
	}
	if e.ErrorKind() != ErrTypeMismatch || e.Function() != "abs" {
		t.Fatalf("unexpected error fields: %v %q", e.ErrorKind(), e.Function())
	}
	if e.ConstraintIndex() != 0 || e.InputIndex() != 0 || e.SegmentIndex() != -1 {
		t.Fatalf("indices = %d %d %d", e.ConstraintIndex(), e.InputIndex(), e.SegmentIndex())
	}

	same := NewError(ErrTypeMismatch, "bad input", Str("x")).WithFunction("abs").WithMismatch(0, 0)
	if !e.Equal(same) || Hash(e) != Hash(same) {
		t.Fatal("identical errors should be equal")
	}
	if e.Equal(e.WithMismatch(0, 1)) {
		t.Fatal("errors with different input index should differ")
	}
}

type hostContext struct{ name string }

func (h *hostContext) TryGetSubcontext(string) (Context, bool) { return nil, false }
func (h *hostContext) TryGetProperty(string) (Property, bool)  { return nil, false }

func TestObjectIdentity(t *testing.T) {
	h1 := &hostContext{name: "a"}
	h2 := &hostContext{name: "a"}

	if !NewObject(h1).Equal(NewObject(h1)) {
		t.Fatal("objects wrapping the same host should be equal")
	}
	if NewObject(h1).Equal(NewObject(h2)) {
		t.Fatal("objects wrapping different hosts should differ")
	}
	if got := FromContext(Vec(Int(1))); got.Kind() != KindVector {
		t.Fatalf("FromContext(vector) kind = %v", got.Kind())
	}
	if got := FromContext(h1); got.Kind() != KindObject {
		t.Fatalf("FromContext(host) kind = %v", got.Kind())
	}
}

func TestNullHandling(t *testing.T) {
	if !Equal(nil, Null) {
		t.Fatal("nil should equal Null")
	}
	if !IsNull(nil) || !IsNull(Null) || IsNull(Int(0)) {
		t.Fatal("IsNull misreports")
	}
	if Null.Equal(Int(0)) {
		t.Fatal("Null should not equal 0")
	}
}

func TestGuaranteeString(t *testing.T) {
	tests := []struct {
		g    TypeGuarantee
		want string
	}{
		{GuaranteeAny, "Any"},
		{GuaranteeRealAny, "Real"},
		{GuaranteeInteger, "Integer"},
		{GuaranteeText | GuaranteeVector, "Text|Vector"},
	}
	for _, tt := range tests {
		if got := tt.g.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
