package function

import (
	"github.com/vango-dev/recalc/pkg/value"
)

var (
	VectorOf = New("vector", "vector of the inputs", ConstraintSet{Variadic(0, anyArg)},
		func(c Call) value.Value { return value.Vec(c.Args...) })

	Index = New("index", "element at a zero-based position", ConstraintSet{Fixed(vecArg, intArg)},
		func(c Call) value.Value {
			v := c.Vector(0)
			i, ok := c.Number(1).Int64()
			if !ok || i < 0 || i >= int64(v.Len()) {
				return c.Fail(value.ErrDomain, "index %s out of range [0, %d)", c.Number(1), v.Len())
			}
			return v.At(int(i))
		})

	Count = New("count", "number of elements", ConstraintSet{Fixed(vecArg)},
		func(c Call) value.Value { return value.Int(int64(c.Vector(0).Len())) })
)

var vectorFunctions = []*Function{VectorOf, Index, Count}
