package function

import (
	"fmt"

	"github.com/vango-dev/recalc/pkg/value"
)

// Operation computes a result from inputs already validated against the
// signature recorded in the Call. Operations must be pure.
type Operation func(c Call) value.Value

// Call carries validated inputs to an Operation.
type Call struct {
	// Name is the function being invoked.
	Name string

	// Signature is the index of the matched signature.
	Signature int

	// Args are the inputs.
	Args []value.Value
}

// Number returns argument i as a Number. The slot must guarantee a number.
func (c Call) Number(i int) value.Number {
	return c.Args[i].(value.Number)
}

// Text returns argument i as Text.
func (c Call) Text(i int) value.Text {
	return c.Args[i].(value.Text)
}

// Bool returns argument i as a Boolean.
func (c Call) Bool(i int) value.Boolean {
	return c.Args[i].(value.Boolean)
}

// Vector returns argument i as a Vector.
func (c Call) Vector(i int) value.Vector {
	return c.Args[i].(value.Vector)
}

// Fail returns an Error of kind attributed to this call.
func (c Call) Fail(kind value.ErrorKind, format string, args ...any) value.Error {
	msg := c.Name + ": " + fmt.Sprintf(format, args...)
	return value.NewError(kind, msg, c.Args...).WithFunction(c.Name)
}

// Arithmetic converts a failed decimal operation into an Arithmetic error.
func (c Call) Arithmetic(err error) value.Error {
	return c.Fail(value.ErrArithmetic, "%v", err)
}

// Function is a named operation with its constraint set.
type Function struct {
	name        string
	summary     string
	constraints ConstraintSet
	op          Operation
}

// New returns a Function. It panics when constraints is empty or op is nil,
// since such a function could never be invoked.
func New(name, summary string, constraints ConstraintSet, op Operation) *Function {
	if len(constraints) == 0 {
		panic("function: " + name + " declared without signatures")
	}
	if op == nil {
		panic("function: " + name + " declared without operation")
	}
	cs := make(ConstraintSet, len(constraints))
	copy(cs, constraints)
	return &Function{name: name, summary: summary, constraints: cs, op: op}
}

// Name returns the function name.
func (f *Function) Name() string { return f.name }

// Summary returns a one-line description.
func (f *Function) Summary() string { return f.summary }

// Constraints returns a copy of the constraint set.
func (f *Function) Constraints() ConstraintSet {
	cs := make(ConstraintSet, len(f.constraints))
	copy(cs, f.constraints)
	return cs
}

// String renders the function with its signatures, e.g. "abs(Real)".
func (f *Function) String() string {
	return f.name + f.constraints.Describe()
}

// Evaluate checks inputs against the constraint set and invokes the
// operation. Count and type failures are returned as Error values.
func (f *Function) Evaluate(inputs []value.Value) value.Value {
	sig, at, ok := f.constraints.Resolve(inputs)
	if !ok {
		if sig < 0 {
			return f.inputCountError(inputs)
		}
		return f.typeMismatchError(inputs, sig, at)
	}

	args := make([]value.Value, len(inputs))
	for i, in := range inputs {
		args[i] = value.OrNull(in)
	}
	return value.OrNull(f.op(Call{Name: f.name, Signature: sig, Args: args}))
}

func (f *Function) inputCountError(inputs []value.Value) value.Error {
	msg := fmt.Sprintf("%s: expected %s, got %d; signatures: %s",
		f.name, arityText(f.constraints), len(inputs), f.constraints.Describe())
	return value.NewError(value.ErrInputCount, msg, inputs...).WithFunction(f.name)
}

func (f *Function) typeMismatchError(inputs []value.Value, sig, at int) value.Error {
	got := value.OrNull(inputs[at])
	msg := fmt.Sprintf("%s: argument %d is %s %s, expected %s",
		f.name, at+1, got.Kind(), got, f.constraints[sig].Slot(at))
	return value.NewError(value.ErrTypeMismatch, msg, inputs...).
		WithFunction(f.name).
		WithMismatch(sig, at)
}

// arityText renders the accepted argument range in words.
func arityText(cs ConstraintSet) string {
	lo, hi := cs.ArityRange()
	switch {
	case hi < 0:
		return fmt.Sprintf("at least %d %s", lo, plural(lo))
	case lo == hi:
		return fmt.Sprintf("exactly %d %s", lo, plural(lo))
	default:
		return fmt.Sprintf("between %d and %d arguments", lo, hi)
	}
}

func plural(n int) string {
	if n == 1 {
		return "argument"
	}
	return "arguments"
}
