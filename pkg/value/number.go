package value

import (
	"fmt"
	"hash"

	"github.com/cockroachdb/apd/v3"
)

// Precision is the number of significant decimal digits kept by arithmetic.
const Precision = 34

// decimalContext is shared by every arithmetic operation. apd contexts are
// safe for concurrent use as long as they are not modified.
var decimalContext = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(Precision)
	c.Rounding = apd.RoundHalfEven
	return c
}()

// Number is an exact decimal number.
// The zero Number is 0.
type Number struct {
	d *apd.Decimal
}

var zeroDecimal = apd.New(0, 0)

// Int returns the Number for n.
func Int(n int64) Number {
	return Number{d: apd.New(n, 0)}
}

// Dec returns the Number with coefficient coeff and decimal exponent exp,
// so Dec(15, -1) is 1.5.
func Dec(coeff int64, exp int32) Number {
	return Number{d: apd.New(coeff, exp)}
}

// ParseNumber parses a decimal literal such as "2", "-0.25" or "1e3".
func ParseNumber(s string) (Number, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Number{}, fmt.Errorf("value: invalid number %q: %w", s, err)
	}
	if d.Form != apd.Finite {
		return Number{}, fmt.Errorf("value: number %q is not finite", s)
	}
	return Number{d: d}, nil
}

// MustNumber is ParseNumber for literals known to be valid.
func MustNumber(s string) Number {
	n, err := ParseNumber(s)
	if err != nil {
		panic(err)
	}
	return n
}

// FromDecimal returns a Number holding a copy of d.
func FromDecimal(d *apd.Decimal) Number {
	c := new(apd.Decimal)
	c.Set(d)
	return Number{d: c}
}

func (n Number) decimal() *apd.Decimal {
	if n.d == nil {
		return zeroDecimal
	}
	return n.d
}

// Decimal returns a copy of the underlying decimal.
func (n Number) Decimal() *apd.Decimal {
	c := new(apd.Decimal)
	c.Set(n.decimal())
	return c
}

func (n Number) Kind() Kind           { return KindNumber }
func (n Number) PropertyValue() Value { return n }

// Guarantee reports Integer|Real for integral numbers and Real otherwise.
func (n Number) Guarantee() TypeGuarantee {
	if n.IsInteger() {
		return GuaranteeInteger | GuaranteeReal
	}
	return GuaranteeReal
}

// IsInteger reports whether n has no fractional part.
func (n Number) IsInteger() bool {
	var r apd.Decimal
	r.Reduce(n.decimal())
	return r.Form == apd.Finite && r.Exponent >= 0
}

// Int64 returns n as an int64 when it is integral and in range.
func (n Number) Int64() (int64, bool) {
	if !n.IsInteger() {
		return 0, false
	}
	var r apd.Decimal
	r.Reduce(n.decimal())
	v, err := r.Int64()
	if err != nil {
		return 0, false
	}
	return v, true
}

// Sign returns -1, 0 or +1.
func (n Number) Sign() int {
	return n.decimal().Sign()
}

// Cmp compares n and o, returning -1, 0 or +1.
func (n Number) Cmp(o Number) int {
	return n.decimal().Cmp(o.decimal())
}

// Equal reports numeric equality, so 2 equals 2.0.
func (n Number) Equal(other Value) bool {
	o, ok := other.(Number)
	return ok && n.Cmp(o) == 0
}

// String renders n in plain (non-scientific) notation without trailing zeros.
func (n Number) String() string {
	return n.canonical()
}

func (n Number) canonical() string {
	d := n.decimal()
	if d.IsZero() {
		return "0"
	}
	var r apd.Decimal
	r.Reduce(d)
	return r.Text('f')
}

func (n Number) writeHash(h hash.Hash) {
	h.Write([]byte{byte(KindNumber)})
	s := n.canonical()
	writeLen(h, len(s))
	h.Write([]byte(s))
}

// =============================================================================
// Arithmetic
// =============================================================================

type binaryOp func(d, x, y *apd.Decimal) (apd.Condition, error)
type unaryOp func(d, x *apd.Decimal) (apd.Condition, error)

func apply2(op binaryOp, x, y Number) (Number, error) {
	d := new(apd.Decimal)
	if _, err := op(d, x.decimal(), y.decimal()); err != nil {
		return Number{}, err
	}
	return Number{d: d}, nil
}

func apply1(op unaryOp, x Number) (Number, error) {
	d := new(apd.Decimal)
	if _, err := op(d, x.decimal()); err != nil {
		return Number{}, err
	}
	return Number{d: d}, nil
}

// Add returns n + o.
func (n Number) Add(o Number) (Number, error) { return apply2(decimalContext.Add, n, o) }

// Sub returns n - o.
func (n Number) Sub(o Number) (Number, error) { return apply2(decimalContext.Sub, n, o) }

// Mul returns n * o.
func (n Number) Mul(o Number) (Number, error) { return apply2(decimalContext.Mul, n, o) }

// Quo returns n / o. Division by zero is an error.
func (n Number) Quo(o Number) (Number, error) { return apply2(decimalContext.Quo, n, o) }

// Rem returns the remainder of n / o, with the sign of n.
func (n Number) Rem(o Number) (Number, error) { return apply2(decimalContext.Rem, n, o) }

// Pow returns n raised to o.
func (n Number) Pow(o Number) (Number, error) { return apply2(decimalContext.Pow, n, o) }

// Sqrt returns the square root of n. Negative operands are an error.
func (n Number) Sqrt() (Number, error) { return apply1(decimalContext.Sqrt, n) }

// Floor rounds n toward negative infinity.
func (n Number) Floor() (Number, error) { return apply1(decimalContext.Floor, n) }

// Ceil rounds n toward positive infinity.
func (n Number) Ceil() (Number, error) { return apply1(decimalContext.Ceil, n) }

// Abs returns |n|.
func (n Number) Abs() Number {
	d := new(apd.Decimal)
	d.Abs(n.decimal())
	return Number{d: d}
}

// Neg returns -n.
func (n Number) Neg() Number {
	d := new(apd.Decimal)
	d.Neg(n.decimal())
	return Number{d: d}
}

// Round rounds n half away from zero to places digits after the point.
func (n Number) Round(places int32) (Number, error) {
	c := *decimalContext
	c.Rounding = apd.RoundHalfUp
	d := new(apd.Decimal)
	if _, err := c.Quantize(d, n.decimal(), -places); err != nil {
		return Number{}, err
	}
	return Number{d: d}, nil
}
