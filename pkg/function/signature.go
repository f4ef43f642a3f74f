package function

import (
	"strings"

	"github.com/vango-dev/recalc/pkg/value"
)

// Signature is one accepted shape of arguments.
type Signature struct {
	// Params are the leading slots, one per argument.
	Params []value.TypeGuarantee

	// Tail is the slot repeated after Params. Zero means fixed arity.
	Tail value.TypeGuarantee

	// MinTail is the minimum number of tail arguments.
	MinTail int
}

// Fixed returns a fixed-arity signature with one slot per param.
func Fixed(params ...value.TypeGuarantee) Signature {
	return Signature{Params: params}
}

// Variadic returns a signature accepting prefix followed by at least minTail
// arguments conforming to tail.
func Variadic(minTail int, tail value.TypeGuarantee, prefix ...value.TypeGuarantee) Signature {
	return Signature{Params: prefix, Tail: tail, MinTail: minTail}
}

// IsVariadic reports whether the signature has a repeating tail.
func (s Signature) IsVariadic() bool {
	return s.Tail != 0
}

// MinArity returns the fewest arguments the signature accepts.
func (s Signature) MinArity() int {
	if s.IsVariadic() {
		return len(s.Params) + s.MinTail
	}
	return len(s.Params)
}

// MaxArity returns the most arguments accepted, or -1 when unbounded.
func (s Signature) MaxArity() int {
	if s.IsVariadic() {
		return -1
	}
	return len(s.Params)
}

// Accepts reports whether n arguments fit the signature's arity.
func (s Signature) Accepts(n int) bool {
	if s.IsVariadic() {
		return n >= s.MinArity()
	}
	return n == len(s.Params)
}

// Slot returns the required guarantee for argument i.
func (s Signature) Slot(i int) value.TypeGuarantee {
	if i < len(s.Params) {
		return s.Params[i]
	}
	return s.Tail
}

// firstMismatch returns the index of the first input that does not conform,
// or -1 when all do.
func (s Signature) firstMismatch(inputs []value.Value) int {
	for i, in := range inputs {
		if !value.OrNull(in).Guarantee().Satisfies(s.Slot(i)) {
			return i
		}
	}
	return -1
}

// String renders the signature as "(Real, Integer)" or "(Text, Any...)".
func (s Signature) String() string {
	parts := make([]string, 0, len(s.Params)+1)
	for _, p := range s.Params {
		parts = append(parts, p.String())
	}
	if s.IsVariadic() {
		parts = append(parts, s.Tail.String()+"...")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ConstraintSet is the ordered list of signatures a function accepts.
type ConstraintSet []Signature

// candidates returns signature indices applicable to n inputs in resolution
// order: exact fixed-arity matches first, then variadic ones.
func (cs ConstraintSet) candidates(n int) []int {
	var fixed, variadic []int
	for i, s := range cs {
		if !s.Accepts(n) {
			continue
		}
		if s.IsVariadic() {
			variadic = append(variadic, i)
		} else {
			fixed = append(fixed, i)
		}
	}
	return append(fixed, variadic...)
}

// Resolve picks the signature for inputs. On success it returns the signature
// index and ok. Otherwise it returns the best-fit index and the first
// non-conforming input, or (-1, -1) when no signature accepts the count.
func (cs ConstraintSet) Resolve(inputs []value.Value) (sig, mismatch int, ok bool) {
	sig, mismatch = -1, -1
	for _, idx := range cs.candidates(len(inputs)) {
		at := cs[idx].firstMismatch(inputs)
		if at < 0 {
			return idx, -1, true
		}
		if at > mismatch {
			sig, mismatch = idx, at
		}
	}
	return sig, mismatch, false
}

// ArityRange returns the smallest and largest accepted argument counts.
// hi is -1 when some signature is variadic.
func (cs ConstraintSet) ArityRange() (lo, hi int) {
	if len(cs) == 0 {
		return 0, 0
	}
	lo = cs[0].MinArity()
	for _, s := range cs {
		if m := s.MinArity(); m < lo {
			lo = m
		}
		m := s.MaxArity()
		if m < 0 || hi < 0 {
			hi = -1
			continue
		}
		if m > hi {
			hi = m
		}
	}
	return lo, hi
}

// Describe renders every signature, separated by " | ".
func (cs ConstraintSet) Describe() string {
	parts := make([]string, len(cs))
	for i, s := range cs {
		parts[i] = s.String()
	}
	return strings.Join(parts, " | ")
}
