package value

import (
	"hash"
	"strconv"
)

// Kind identifies the variant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindBoolean
	KindText
	KindVector
	KindError
	KindObject
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindText:
		return "text"
	case KindVector:
		return "vector"
	case KindError:
		return "error"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is an immutable tagged value. The set of implementations is closed;
// only this package can add variants.
type Value interface {
	Property

	// Kind returns the variant tag.
	Kind() Kind

	// Guarantee returns the constraint categories this value satisfies.
	Guarantee() TypeGuarantee

	// Equal reports structural equality.
	Equal(other Value) bool

	// String returns a human-readable rendering.
	String() string

	// writeHash feeds a canonical encoding of the value to h.
	writeHash(h hash.Hash)
}

// Equal reports whether a and b are structurally equal. Nil is treated as
// Null so callers can compare unset values safely.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null
	}
	if b == nil {
		b = Null
	}
	return a.Equal(b)
}

// OrNull returns v, or Null when v is nil.
func OrNull(v Value) Value {
	if v == nil {
		return Null
	}
	return v
}

// =============================================================================
// Null
// =============================================================================

type nullValue struct{}

// Null is the single null value. Variables hold Null until their content is
// first evaluated.
var Null Value = nullValue{}

func (nullValue) Kind() Kind               { return KindNull }
func (nullValue) Guarantee() TypeGuarantee { return GuaranteeNull }
func (nullValue) String() string           { return "null" }
func (n nullValue) PropertyValue() Value   { return n }
func (nullValue) writeHash(h hash.Hash)    { h.Write([]byte{byte(KindNull)}) }
func (nullValue) Equal(other Value) bool   { return other != nil && other.Kind() == KindNull }

// IsNull reports whether v is nil or the Null value.
func IsNull(v Value) bool {
	return v == nil || v.Kind() == KindNull
}

// =============================================================================
// Boolean
// =============================================================================

// Boolean is a truth value.
type Boolean bool

const (
	True  Boolean = true
	False Boolean = false
)

// Bool returns the Boolean for b.
func Bool(b bool) Boolean {
	return Boolean(b)
}

func (b Boolean) Kind() Kind               { return KindBoolean }
func (b Boolean) Guarantee() TypeGuarantee { return GuaranteeBoolean }
func (b Boolean) PropertyValue() Value     { return b }

// Equal reports whether other is the same Boolean.
func (b Boolean) Equal(other Value) bool {
	o, ok := other.(Boolean)
	return ok && o == b
}

func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (b Boolean) writeHash(h hash.Hash) {
	v := byte(0)
	if b {
		v = 1
	}
	h.Write([]byte{byte(KindBoolean), v})
}

// =============================================================================
// Text
// =============================================================================

// Text is an immutable string value.
type Text string

// Str returns the Text for s.
func Str(s string) Text {
	return Text(s)
}

func (t Text) Kind() Kind               { return KindText }
func (t Text) Guarantee() TypeGuarantee { return GuaranteeText }
func (t Text) PropertyValue() Value     { return t }

// Equal reports whether other is the same text.
func (t Text) Equal(other Value) bool {
	o, ok := other.(Text)
	return ok && o == t
}

// String returns the text quoted, so it is distinguishable from numbers.
func (t Text) String() string {
	return strconv.Quote(string(t))
}

func (t Text) writeHash(h hash.Hash) {
	h.Write([]byte{byte(KindText)})
	writeLen(h, len(t))
	h.Write([]byte(t))
}

func writeLen(h hash.Hash, n int) {
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(n >> (8 * i))
	}
	h.Write(buf[:])
}
