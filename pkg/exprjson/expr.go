package exprjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vango-dev/recalc/pkg/function"
	"github.com/vango-dev/recalc/pkg/recalc"
	"github.com/vango-dev/recalc/pkg/value"
)

var (
	// ErrInvalidDocument reports a malformed expression document.
	ErrInvalidDocument = errors.New("exprjson: invalid expression document")

	// ErrUnknownFunction reports a call to a name missing from the registry.
	ErrUnknownFunction = errors.New("exprjson: unknown function")
)

// Node is the JSON form of one expression node.
type Node struct {
	Number *string  `json:"number,omitempty"`
	Bool   *bool    `json:"bool,omitempty"`
	Text   *string  `json:"text,omitempty"`
	Null   bool     `json:"null,omitempty"`
	Ref    []string `json:"ref,omitempty"`
	Call   string   `json:"call,omitempty"`
	Args   []Node   `json:"args,omitempty"`
}

// Decoder builds expression trees against a Scope and a function registry.
type Decoder struct {
	Scope     *recalc.Scope
	Functions *function.Registry

	// scopes holds the dotted scope prefixes of declared names.
	scopes map[string]bool
}

// Declare records dotted variable names that will exist under d.Scope, such
// as the keys of a sheet. A reference segment that is a scope prefix of a
// declared name binds to that nested Scope even before anything created it.
// Declare must not run concurrently with Decode or Build.
func (d *Decoder) Declare(names ...string) {
	if d.scopes == nil {
		d.scopes = make(map[string]bool)
	}
	for _, name := range names {
		segs := strings.Split(name, ".")
		for i := 1; i < len(segs); i++ {
			d.scopes[strings.Join(segs[:i], ".")] = true
		}
	}
}

// Decode parses data as an expression document.
func (d *Decoder) Decode(data []byte) (recalc.Expression, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return d.Build(n)
}

// Build converts n into an expression tree. References are bound to
// Variables of d.Scope, defining the ones that do not exist yet.
func (d *Decoder) Build(n Node) (recalc.Expression, error) {
	return d.build(n, "$")
}

func (d *Decoder) build(n Node, at string) (recalc.Expression, error) {
	if forms := n.forms(); forms != 1 {
		return nil, fmt.Errorf("%w: %s has %d forms, want exactly one", ErrInvalidDocument, at, forms)
	}

	switch {
	case n.Number != nil:
		num, err := value.ParseNumber(*n.Number)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, at, err)
		}
		return recalc.Lit(num), nil
	case n.Bool != nil:
		return recalc.Lit(value.Bool(*n.Bool)), nil
	case n.Text != nil:
		return recalc.Lit(value.Str(*n.Text)), nil
	case n.Null:
		return recalc.Lit(value.Null), nil
	case n.Ref != nil:
		return d.reference(n.Ref, at)
	default:
		return d.call(n, at)
	}
}

func (d *Decoder) reference(path []string, at string) (recalc.Expression, error) {
	if d.Scope == nil {
		return nil, fmt.Errorf("%w: %s: reference without a scope", ErrInvalidDocument, at)
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: %s: empty reference path", ErrInvalidDocument, at)
	}
	for _, seg := range path {
		if seg == "" {
			return nil, fmt.Errorf("%w: %s: empty path segment", ErrInvalidDocument, at)
		}
	}

	s := d.Scope
	i := 0
	for ; i < len(path)-1; i++ {
		child, ok := d.childScope(s, path[:i+1])
		if !ok {
			break
		}
		s = child
	}
	if i == len(path)-1 {
		if child, ok := d.childScope(s, path); ok {
			return recalc.RefIn(s, child.Name()), nil
		}
	}
	return recalc.Ref(s.Define(path[i]), path[i+1:]...), nil
}

// childScope returns the Scope named by the last segment of prefix inside
// s, creating it when prefix is a declared scope.
func (d *Decoder) childScope(s *recalc.Scope, prefix []string) (*recalc.Scope, bool) {
	seg := prefix[len(prefix)-1]
	if sub, ok := s.TryGetSubcontext(seg); ok {
		child, ok := sub.(*recalc.Scope)
		return child, ok
	}
	if d.scopes[strings.Join(prefix, ".")] {
		return s.Child(seg), true
	}
	return nil, false
}

func (d *Decoder) call(n Node, at string) (recalc.Expression, error) {
	if d.Functions == nil {
		return nil, fmt.Errorf("%w: %s: no function registry", ErrUnknownFunction, at)
	}
	fn, ok := d.Functions.Lookup(n.Call)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, n.Call)
	}
	args := make([]recalc.Expression, len(n.Args))
	for i, a := range n.Args {
		arg, err := d.build(a, fmt.Sprintf("%s.args[%d]", at, i))
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return recalc.Call(fn, args...), nil
}

func (n Node) forms() int {
	count := 0
	for _, set := range []bool{
		n.Number != nil,
		n.Bool != nil,
		n.Text != nil,
		n.Null,
		n.Ref != nil,
		n.Call != "",
	} {
		if set {
			count++
		}
	}
	if n.Call == "" && len(n.Args) > 0 {
		count++
	}
	return count
}

// FromExpression renders an expression tree as a Node. Literal vectors,
// errors and objects have no document form and render as their text.
// Reference paths are qualified from the outermost Scope, so decoding the
// Node against that Scope binds the same Variables.
func FromExpression(e recalc.Expression) Node {
	switch x := e.(type) {
	case recalc.Literal:
		return literalNode(value.OrNull(x.Value))
	case *recalc.Apply:
		n := Node{Args: make([]Node, len(x.Args))}
		if x.Fn != nil {
			n.Call = x.Fn.Name()
		}
		for i, a := range x.Args {
			n.Args[i] = FromExpression(a)
		}
		return n
	case *recalc.Reference:
		var path []string
		if o := x.Origin(); o != nil {
			if s := o.Scope(); s != nil {
				path = s.Path()
			}
			path = append(path, o.Name())
		} else if s, ok := x.Root().(*recalc.Scope); ok {
			path = s.Path()
		}
		return Node{Ref: append(path, x.Path()...)}
	default:
		return Node{Null: true}
	}
}

func literalNode(v value.Value) Node {
	switch x := v.(type) {
	case value.Number:
		s := x.String()
		return Node{Number: &s}
	case value.Boolean:
		b := bool(x)
		return Node{Bool: &b}
	case value.Text:
		s := string(x)
		return Node{Text: &s}
	case value.Vector:
		args := make([]Node, x.Len())
		for i, el := range x.Elements() {
			args[i] = literalNode(el)
		}
		return Node{Call: "vector", Args: args}
	default:
		if value.IsNull(v) {
			return Node{Null: true}
		}
		s := v.String()
		return Node{Text: &s}
	}
}
