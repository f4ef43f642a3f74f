package value

import (
	"fmt"
	"hash"
	"strconv"
)

// ErrorKind classifies an Error value.
type ErrorKind uint8

const (
	// ErrInputCount means no signature of a function accepts the number of
	// inputs supplied.
	ErrInputCount ErrorKind = iota + 1

	// ErrTypeMismatch means an input does not conform to its slot.
	ErrTypeMismatch

	// ErrPath means a reference path could not be walked.
	ErrPath

	// ErrCircularReference means a reference would read its own host.
	ErrCircularReference

	// ErrArithmetic covers division by zero, overflow and similar conditions.
	ErrArithmetic

	// ErrDomain means an argument is outside the operation's domain, such as
	// an index out of range.
	ErrDomain
)

// String returns the kind's name.
func (k ErrorKind) String() string {
	switch k {
	case ErrInputCount:
		return "InputCount"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrPath:
		return "Path"
	case ErrCircularReference:
		return "CircularReference"
	case ErrArithmetic:
		return "Arithmetic"
	case ErrDomain:
		return "Domain"
	default:
		return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Error is a failed computation carried as data. Downstream functions
// receive it as an ordinary input.
//
// Index fields are -1 when they do not apply.
type Error struct {
	kind       ErrorKind
	message    string
	function   string
	inputs     []Value
	constraint int
	input      int
	segment    int
}

// NewError returns an Error of kind with message and the offending inputs.
func NewError(kind ErrorKind, message string, inputs ...Value) Error {
	e := Error{
		kind:       kind,
		message:    message,
		constraint: -1,
		input:      -1,
		segment:    -1,
	}
	if len(inputs) > 0 {
		e.inputs = make([]Value, len(inputs))
		for i, in := range inputs {
			e.inputs[i] = OrNull(in)
		}
	}
	return e
}

// Errorf returns an Error of kind with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) Error {
	return NewError(kind, fmt.Sprintf(format, args...))
}

// WithFunction returns a copy of e attributed to the named function.
func (e Error) WithFunction(name string) Error {
	e.function = name
	return e
}

// WithInputs returns a copy of e carrying inputs.
func (e Error) WithInputs(inputs []Value) Error {
	n := NewError(e.kind, e.message, inputs...)
	n.function, n.constraint, n.input, n.segment = e.function, e.constraint, e.input, e.segment
	return n
}

// WithMismatch returns a copy of e recording the best-fit constraint index and
// the index of the first non-conforming input.
func (e Error) WithMismatch(constraint, input int) Error {
	e.constraint = constraint
	e.input = input
	return e
}

// WithSegment returns a copy of e recording the failing path segment index.
func (e Error) WithSegment(segment int) Error {
	e.segment = segment
	return e
}

func (e Error) Kind() Kind               { return KindError }
func (e Error) Guarantee() TypeGuarantee { return GuaranteeError }
func (e Error) PropertyValue() Value     { return e }

// ErrorKind returns the error classification.
func (e Error) ErrorKind() ErrorKind { return e.kind }

// Message returns the human-readable message.
func (e Error) Message() string { return e.message }

// Function returns the name of the function that produced e, if any.
func (e Error) Function() string { return e.function }

// ConstraintIndex returns the best-fit signature index for type mismatches.
func (e Error) ConstraintIndex() int { return e.constraint }

// InputIndex returns the first non-conforming input for type mismatches.
func (e Error) InputIndex() int { return e.input }

// SegmentIndex returns the failing segment for path errors.
func (e Error) SegmentIndex() int { return e.segment }

// Inputs returns a copy of the offending inputs.
func (e Error) Inputs() []Value {
	c := make([]Value, len(e.inputs))
	copy(c, e.inputs)
	return c
}

// Equal reports structural equality of kind, message, indices and inputs.
func (e Error) Equal(other Value) bool {
	o, ok := other.(Error)
	if !ok {
		return false
	}
	if e.kind != o.kind || e.message != o.message || e.function != o.function ||
		e.constraint != o.constraint || e.input != o.input || e.segment != o.segment ||
		len(e.inputs) != len(o.inputs) {
		return false
	}
	for i := range e.inputs {
		if !e.inputs[i].Equal(o.inputs[i]) {
			return false
		}
	}
	return true
}

func (e Error) String() string {
	return "#" + e.kind.String() + ": " + e.message
}

func (e Error) writeHash(h hash.Hash) {
	h.Write([]byte{byte(KindError), byte(e.kind)})
	writeLen(h, len(e.message))
	h.Write([]byte(e.message))
	writeLen(h, len(e.function))
	h.Write([]byte(e.function))
	writeLen(h, e.constraint)
	writeLen(h, e.input)
	writeLen(h, e.segment)
	writeLen(h, len(e.inputs))
	for _, in := range e.inputs {
		in.writeHash(h)
	}
}

// IsError reports whether v is an Error value.
func IsError(v Value) bool {
	_, ok := v.(Error)
	return ok
}
