package function

import (
	"strings"
	"unicode/utf8"

	"github.com/vango-dev/recalc/pkg/value"
)

var (
	Concat = New("concat", "join the display form of every input",
		ConstraintSet{Variadic(0, valArg)},
		func(c Call) value.Value {
			var b strings.Builder
			for _, a := range c.Args {
				b.WriteString(Display(a))
			}
			return value.Str(b.String())
		})

	Len = New("len", "characters in text or elements in a vector",
		ConstraintSet{Fixed(textArg), Fixed(vecArg)},
		func(c Call) value.Value {
			if c.Signature == 0 {
				return value.Int(int64(utf8.RuneCountInString(string(c.Text(0)))))
			}
			return value.Int(int64(c.Vector(0).Len()))
		})

	Upper = New("upper", "upper-case text", ConstraintSet{Fixed(textArg)},
		func(c Call) value.Value { return value.Str(strings.ToUpper(string(c.Text(0)))) })

	Lower = New("lower", "lower-case text", ConstraintSet{Fixed(textArg)},
		func(c Call) value.Value { return value.Str(strings.ToLower(string(c.Text(0)))) })
)

var textFunctions = []*Function{Concat, Len, Upper, Lower}

// Display renders v for human output: text unquoted, everything else as
// its String form.
func Display(v value.Value) string {
	if t, ok := v.(value.Text); ok {
		return string(t)
	}
	return value.OrNull(v).String()
}
