package value

import (
	"hash"
	"strconv"
	"strings"
)

// Vector property names answered through TryGetProperty.
const (
	PropLength = "length"
	PropMin    = "min"
	PropMax    = "max"
)

// Vector is an immutable ordered sequence of values. Vector is also a
// Context: it answers "length", the ordinal bounds "min" and "max", and
// integer segments addressing its elements.
type Vector struct {
	elems []Value
}

// Vec returns a Vector holding a copy of elems. Nil elements become Null.
func Vec(elems ...Value) Vector {
	c := make([]Value, len(elems))
	for i, e := range elems {
		c[i] = OrNull(e)
	}
	return Vector{elems: c}
}

func (v Vector) Kind() Kind               { return KindVector }
func (v Vector) Guarantee() TypeGuarantee { return GuaranteeVector }
func (v Vector) PropertyValue() Value     { return v }

// Len returns the number of elements.
func (v Vector) Len() int {
	return len(v.elems)
}

// At returns the element at i. It panics when i is out of range.
func (v Vector) At(i int) Value {
	return v.elems[i]
}

// Elements returns a copy of the elements.
func (v Vector) Elements() []Value {
	c := make([]Value, len(v.elems))
	copy(c, v.elems)
	return c
}

// Equal reports element-wise structural equality.
func (v Vector) Equal(other Value) bool {
	o, ok := other.(Vector)
	if !ok || len(o.elems) != len(v.elems) {
		return false
	}
	for i := range v.elems {
		if !v.elems[i].Equal(o.elems[i]) {
			return false
		}
	}
	return true
}

func (v Vector) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range v.elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteByte(']')
	return b.String()
}

func (v Vector) writeHash(h hash.Hash) {
	h.Write([]byte{byte(KindVector)})
	writeLen(h, len(v.elems))
	for _, e := range v.elems {
		e.writeHash(h)
	}
}

// index parses segment as an element index within bounds.
func (v Vector) index(segment string) (int, bool) {
	i, err := strconv.Atoi(segment)
	if err != nil || i < 0 || i >= len(v.elems) {
		return 0, false
	}
	return i, true
}

// TryGetSubcontext resolves an element index whose element is itself a
// Context.
func (v Vector) TryGetSubcontext(segment string) (Context, bool) {
	i, ok := v.index(segment)
	if !ok {
		return nil, false
	}
	return AsContext(v.elems[i])
}

// TryGetProperty answers length, min, max and element indices. An empty
// vector has no ordinal bounds.
func (v Vector) TryGetProperty(segment string) (Property, bool) {
	switch segment {
	case PropLength:
		return Int(int64(len(v.elems))), true
	case PropMin:
		if len(v.elems) == 0 {
			return nil, false
		}
		return Int(0), true
	case PropMax:
		if len(v.elems) == 0 {
			return nil, false
		}
		return Int(int64(len(v.elems) - 1)), true
	}
	if i, ok := v.index(segment); ok {
		return v.elems[i], true
	}
	return nil, false
}
