// Package value provides the immutable tagged values that flow through a
// recalc graph.
//
// Every value is one of Number, Boolean, Text, Vector, Error, Null or Object.
// Values never change after construction, compare structurally with Equal,
// and hash consistently with Equal through Hash.
//
// # Type Guarantees
//
// Each value reports a TypeGuarantee bitset describing the constraint
// categories it satisfies. Function signatures declare the categories each
// argument slot accepts, and a value conforms to a slot when the two sets
// intersect:
//
//	n := value.Int(3)
//	n.Guarantee().Satisfies(value.GuaranteeInteger) // true
//	n.Guarantee().Satisfies(value.GuaranteeText)    // false
//
// # Errors Are Values
//
// Failed evaluation never panics and never returns a Go error. It produces an
// Error value carrying a Kind, a message and the offending inputs. Error
// values propagate through further computation like any other value.
//
// # Contexts
//
// A Context resolves path segments to sub-contexts and properties. Vector
// implements Context (length, min, max and element indices); host objects
// implement it explicitly to become addressable by references.
package value
