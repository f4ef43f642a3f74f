package recalc

import (
	"strings"

	"github.com/vango-dev/recalc/pkg/function"
	"github.com/vango-dev/recalc/pkg/value"
)

// Expression is a content tree node: a Literal, an *Apply or a *Reference.
// Trees are built by callers (typically a formula parser) and handed to
// Variable.SetContent, which takes ownership of them.
type Expression interface {
	// Evaluate computes the node's current value. Failures are Error values.
	Evaluate() value.Value

	// String renders the node in call syntax, e.g. "add(a, 3)".
	String() string

	// children returns the direct sub-expressions.
	children() []Expression
}

// Literal is a constant value.
type Literal struct {
	Value value.Value
}

// Lit returns a Literal holding v.
func Lit(v value.Value) Literal {
	return Literal{Value: value.OrNull(v)}
}

func (l Literal) Evaluate() value.Value  { return value.OrNull(l.Value) }
func (l Literal) String() string         { return value.OrNull(l.Value).String() }
func (l Literal) children() []Expression { return nil }

// Apply is a function application.
type Apply struct {
	Fn   *function.Function
	Args []Expression
}

// Call returns an Apply of fn to args.
func Call(fn *function.Function, args ...Expression) *Apply {
	return &Apply{Fn: fn, Args: args}
}

// Evaluate evaluates every argument and then the function.
func (a *Apply) Evaluate() value.Value {
	inputs := make([]value.Value, len(a.Args))
	for i, arg := range a.Args {
		if arg == nil {
			inputs[i] = value.Null
			continue
		}
		inputs[i] = arg.Evaluate()
	}
	if a.Fn == nil {
		return value.NewError(value.ErrDomain, "application without function", inputs...)
	}
	return a.Fn.Evaluate(inputs)
}

func (a *Apply) String() string {
	var b strings.Builder
	if a.Fn != nil {
		b.WriteString(a.Fn.Name())
	}
	b.WriteByte('(')
	for i, arg := range a.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		if arg == nil {
			b.WriteString("null")
			continue
		}
		b.WriteString(arg.String())
	}
	b.WriteByte(')')
	return b.String()
}

func (a *Apply) children() []Expression { return a.Args }

// collectReferences returns every Reference in the tree rooted at e, each
// once, in depth-first order. It walks with an explicit stack so deep trees
// cannot exhaust the goroutine stack.
func collectReferences(e Expression) []*Reference {
	if e == nil {
		return nil
	}
	var (
		refs  []*Reference
		seen  = make(map[*Reference]bool)
		stack = []Expression{e}
	)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		if r, ok := n.(*Reference); ok && !seen[r] {
			seen[r] = true
			refs = append(refs, r)
		}
		kids := n.children()
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return refs
}
