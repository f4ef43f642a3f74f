// Package function provides callable operations guarded by declarative
// arity and type constraints.
//
// A Function carries a ConstraintSet: an ordered list of Signatures, each
// either fixed-arity or variadic (a fixed prefix plus a repeating tail).
// Evaluate resolves the signature for the given inputs, type-checks every
// input against its slot and invokes the operation:
//
//	function.Abs.Evaluate([]value.Value{value.Int(-5)})             // 5
//	function.Abs.Evaluate([]value.Value{value.Int(1), value.Int(2)}) // #InputCount
//
// Failures are value.Error values, never panics or Go errors, so they compose
// through further function applications.
//
// # Overload Resolution
//
// Candidates are tried in a fixed order: fixed-arity signatures whose arity
// equals the input count, in declaration order, then variadic signatures whose
// minimum arity does not exceed the input count, in declaration order. The
// first candidate whose every slot conforms is invoked. When no candidate
// conforms, the reported TypeMismatch names the best fit: the candidate whose
// first mismatching input comes latest, the earliest declared one on ties.
package function
