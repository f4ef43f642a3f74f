package function

import (
	"github.com/vango-dev/recalc/pkg/value"
)

const (
	numArg  = value.GuaranteeRealAny
	intArg  = value.GuaranteeInteger
	boolArg = value.GuaranteeBoolean
	textArg = value.GuaranteeText
	vecArg  = value.GuaranteeVector
	anyArg  = value.GuaranteeAny
	valArg  = value.GuaranteeNonError
)

var (
	Abs = New("abs", "absolute value", ConstraintSet{Fixed(numArg)},
		func(c Call) value.Value { return c.Number(0).Abs() })

	Neg = New("neg", "negation", ConstraintSet{Fixed(numArg)},
		func(c Call) value.Value { return c.Number(0).Neg() })

	Add = New("add", "sum of two numbers", ConstraintSet{Fixed(numArg, numArg)},
		arith2(value.Number.Add))

	Sub = New("sub", "difference of two numbers", ConstraintSet{Fixed(numArg, numArg)},
		arith2(value.Number.Sub))

	Mul = New("mul", "product of two numbers", ConstraintSet{Fixed(numArg, numArg)},
		arith2(value.Number.Mul))

	Div = New("div", "quotient of two numbers", ConstraintSet{Fixed(numArg, numArg)},
		func(c Call) value.Value {
			if c.Number(1).Sign() == 0 {
				return c.Fail(value.ErrArithmetic, "division by zero")
			}
			return arith2(value.Number.Quo)(c)
		})

	Mod = New("mod", "remainder of a division", ConstraintSet{Fixed(numArg, numArg)},
		func(c Call) value.Value {
			if c.Number(1).Sign() == 0 {
				return c.Fail(value.ErrArithmetic, "division by zero")
			}
			return arith2(value.Number.Rem)(c)
		})

	Pow = New("pow", "base raised to an exponent", ConstraintSet{Fixed(numArg, numArg)},
		func(c Call) value.Value {
			if c.Number(0).Sign() < 0 && !c.Number(1).IsInteger() {
				return c.Fail(value.ErrDomain, "negative base with fractional exponent")
			}
			return arith2(value.Number.Pow)(c)
		})

	Round = New("round", "round half away from zero",
		ConstraintSet{Fixed(numArg), Fixed(numArg, intArg)},
		func(c Call) value.Value {
			places := int64(0)
			if c.Signature == 1 {
				var ok bool
				if places, ok = c.Number(1).Int64(); !ok {
					return c.Fail(value.ErrDomain, "places %s out of range", c.Number(1))
				}
			}
			if places < -1000 || places > 1000 {
				return c.Fail(value.ErrDomain, "places %d out of range", places)
			}
			r, err := c.Number(0).Round(int32(places))
			if err != nil {
				return c.Arithmetic(err)
			}
			return r
		})

	Floor = New("floor", "round toward negative infinity", ConstraintSet{Fixed(numArg)},
		arith1(value.Number.Floor))

	Ceil = New("ceil", "round toward positive infinity", ConstraintSet{Fixed(numArg)},
		arith1(value.Number.Ceil))

	Sqrt = New("sqrt", "square root", ConstraintSet{Fixed(numArg)},
		func(c Call) value.Value {
			if c.Number(0).Sign() < 0 {
				return c.Fail(value.ErrDomain, "square root of negative number")
			}
			return arith1(value.Number.Sqrt)(c)
		})

	Min = New("min", "smallest of numbers or of a vector",
		ConstraintSet{Fixed(vecArg), Variadic(1, numArg)},
		extremum(-1))

	Max = New("max", "largest of numbers or of a vector",
		ConstraintSet{Fixed(vecArg), Variadic(1, numArg)},
		extremum(+1))

	Sum = New("sum", "sum of numbers or of a vector",
		ConstraintSet{Fixed(vecArg), Variadic(0, numArg)},
		func(c Call) value.Value {
			nums, bad := numbers(c)
			if bad != nil {
				return *bad
			}
			return total(c, nums)
		})

	Average = New("average", "arithmetic mean of numbers or of a vector",
		ConstraintSet{Fixed(vecArg), Variadic(1, numArg)},
		func(c Call) value.Value {
			nums, bad := numbers(c)
			if bad != nil {
				return *bad
			}
			if len(nums) == 0 {
				return c.Fail(value.ErrDomain, "average of empty vector")
			}
			s := total(c, nums)
			sn, ok := s.(value.Number)
			if !ok {
				return s
			}
			q, err := sn.Quo(value.Int(int64(len(nums))))
			if err != nil {
				return c.Arithmetic(err)
			}
			return q
		})
)

var mathFunctions = []*Function{
	Abs, Neg, Add, Sub, Mul, Div, Mod, Pow, Round, Floor, Ceil, Sqrt,
	Min, Max, Sum, Average,
}

func arith2(op func(value.Number, value.Number) (value.Number, error)) Operation {
	return func(c Call) value.Value {
		r, err := op(c.Number(0), c.Number(1))
		if err != nil {
			return c.Arithmetic(err)
		}
		return r
	}
}

func arith1(op func(value.Number) (value.Number, error)) Operation {
	return func(c Call) value.Value {
		r, err := op(c.Number(0))
		if err != nil {
			return c.Arithmetic(err)
		}
		return r
	}
}

// numbers flattens the call's inputs: the elements of a single vector
// argument (signature 0) or the variadic numbers.
func numbers(c Call) ([]value.Number, *value.Error) {
	src := c.Args
	if c.Signature == 0 {
		src = c.Vector(0).Elements()
	}
	out := make([]value.Number, 0, len(src))
	for i, v := range src {
		n, ok := v.(value.Number)
		if !ok {
			e := c.Fail(value.ErrTypeMismatch, "element %d is %s, expected number", i, v.Kind())
			return nil, &e
		}
		out = append(out, n)
	}
	return out, nil
}

func total(c Call, nums []value.Number) value.Value {
	acc := value.Int(0)
	for _, n := range nums {
		var err error
		if acc, err = acc.Add(n); err != nil {
			return c.Arithmetic(err)
		}
	}
	return acc
}

func extremum(dir int) Operation {
	return func(c Call) value.Value {
		nums, bad := numbers(c)
		if bad != nil {
			return *bad
		}
		if len(nums) == 0 {
			return c.Fail(value.ErrDomain, "empty vector")
		}
		best := nums[0]
		for _, n := range nums[1:] {
			if n.Cmp(best) == dir {
				best = n
			}
		}
		return best
	}
}
