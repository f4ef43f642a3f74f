package function

import (
	"github.com/vango-dev/recalc/pkg/value"
)

var (
	Not = New("not", "logical negation", ConstraintSet{Fixed(boolArg)},
		func(c Call) value.Value { return !c.Bool(0) })

	And = New("and", "true when every input is true", ConstraintSet{Variadic(1, boolArg)},
		func(c Call) value.Value {
			for i := range c.Args {
				if !c.Bool(i) {
					return value.False
				}
			}
			return value.True
		})

	Or = New("or", "true when any input is true", ConstraintSet{Variadic(1, boolArg)},
		func(c Call) value.Value {
			for i := range c.Args {
				if c.Bool(i) {
					return value.True
				}
			}
			return value.False
		})

	If = New("if", "choose between two values", ConstraintSet{Fixed(boolArg, anyArg, anyArg)},
		func(c Call) value.Value {
			if c.Bool(0) {
				return c.Args[1]
			}
			return c.Args[2]
		})

	Eq = New("eq", "structural equality", ConstraintSet{Fixed(anyArg, anyArg)},
		func(c Call) value.Value { return value.Bool(c.Args[0].Equal(c.Args[1])) })

	Ne = New("ne", "structural inequality", ConstraintSet{Fixed(anyArg, anyArg)},
		func(c Call) value.Value { return value.Bool(!c.Args[0].Equal(c.Args[1])) })

	Lt = New("lt", "less than", comparable2, compare(func(r int) bool { return r < 0 }))
	Le = New("le", "less than or equal", comparable2, compare(func(r int) bool { return r <= 0 }))
	Gt = New("gt", "greater than", comparable2, compare(func(r int) bool { return r > 0 }))
	Ge = New("ge", "greater than or equal", comparable2, compare(func(r int) bool { return r >= 0 }))

	IsError = New("iserror", "true when the input is an error", ConstraintSet{Fixed(anyArg)},
		func(c Call) value.Value { return value.Bool(value.IsError(c.Args[0])) })

	IfError = New("iferror", "fallback when the first input is an error",
		ConstraintSet{Fixed(anyArg, anyArg)},
		func(c Call) value.Value {
			if value.IsError(c.Args[0]) {
				return c.Args[1]
			}
			return c.Args[0]
		})
)

var logicFunctions = []*Function{
	Not, And, Or, If, Eq, Ne, Lt, Le, Gt, Ge, IsError, IfError,
}

var comparable2 = ConstraintSet{Fixed(numArg, numArg), Fixed(textArg, textArg)}

func compare(accept func(int) bool) Operation {
	return func(c Call) value.Value {
		var r int
		if c.Signature == 0 {
			r = c.Number(0).Cmp(c.Number(1))
		} else {
			a, b := c.Text(0), c.Text(1)
			switch {
			case a < b:
				r = -1
			case a > b:
				r = 1
			}
		}
		return value.Bool(accept(r))
	}
}
