package exprjson

import (
	"encoding/json"
	"testing"

	"github.com/vango-dev/recalc/pkg/function"
	"github.com/vango-dev/recalc/pkg/value"
)

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		name string
		in   value.Value
		want string
	}{
		{"null", value.Null, `{"kind":"null"}`},
		{"nil", nil, `{"kind":"null"}`},
		{"number", value.MustNumber("2.50"), `{"kind":"number","value":"2.5"}`},
		{"false", value.False, `{"kind":"boolean","value":false}`},
		{"text", value.Str("a"), `{"kind":"text","value":"a"}`},
		{"vector", value.Vec(value.Int(1), value.True), `{"kind":"vector","value":[{"kind":"number","value":"1"},{"kind":"boolean","value":true}]}`},
		{"path error", value.NewError(value.ErrPath, "no member").WithSegment(1),
			`{"kind":"error","value":{"errorKind":"Path","message":"no member","segment":1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(EncodeValue(tt.in))
			if err != nil {
				t.Fatal(err)
			}
			if string(out) != tt.want {
				t.Fatalf("got  %s\nwant %s", out, tt.want)
			}
		})
	}
}

func TestEncodeTypeMismatch(t *testing.T) {
	v := function.Abs.Evaluate([]value.Value{value.Str("x")})
	enc := EncodeValue(v)
	body, ok := enc.Value.(ErrorBody)
	if !ok {
		t.Fatalf("value = %T, want ErrorBody", enc.Value)
	}
	if body.Kind != "TypeMismatch" || body.Function != "abs" {
		t.Fatalf("body = %+v", body)
	}
	if body.Constraint == nil || *body.Constraint != 0 || body.Input == nil || *body.Input != 0 {
		t.Fatalf("indices = %v %v", body.Constraint, body.Input)
	}
	if len(body.Inputs) != 1 || body.Inputs[0].Value != "x" {
		t.Fatalf("inputs = %+v", body.Inputs)
	}
}
