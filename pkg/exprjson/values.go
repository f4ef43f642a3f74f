package exprjson

import (
	"github.com/vango-dev/recalc/pkg/value"
)

// Value is the JSON form of a value.
type Value struct {
	Kind  string `json:"kind"`
	Value any    `json:"value,omitempty"`
}

// ErrorBody is the payload of an encoded error value.
type ErrorBody struct {
	Kind       string  `json:"errorKind"`
	Message    string  `json:"message"`
	Function   string  `json:"function,omitempty"`
	Constraint *int    `json:"constraint,omitempty"`
	Input      *int    `json:"input,omitempty"`
	Segment    *int    `json:"segment,omitempty"`
	Inputs     []Value `json:"inputs,omitempty"`
}

// EncodeValue renders v for JSON output. Numbers are encoded as decimal
// strings so no precision is lost.
func EncodeValue(v value.Value) Value {
	v = value.OrNull(v)
	out := Value{Kind: v.Kind().String()}
	switch x := v.(type) {
	case value.Number:
		out.Value = x.String()
	case value.Boolean:
		out.Value = bool(x)
	case value.Text:
		out.Value = string(x)
	case value.Vector:
		elems := make([]Value, x.Len())
		for i, el := range x.Elements() {
			elems[i] = EncodeValue(el)
		}
		out.Value = elems
	case value.Error:
		body := ErrorBody{
			Kind:       x.ErrorKind().String(),
			Message:    x.Message(),
			Function:   x.Function(),
			Constraint: index(x.ConstraintIndex()),
			Input:      index(x.InputIndex()),
			Segment:    index(x.SegmentIndex()),
		}
		for _, in := range x.Inputs() {
			body.Inputs = append(body.Inputs, EncodeValue(in))
		}
		out.Value = body
	case value.Object:
		out.Value = x.String()
	}
	return out
}

func index(i int) *int {
	if i < 0 {
		return nil
	}
	return &i
}
