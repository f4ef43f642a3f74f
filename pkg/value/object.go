package value

import (
	"fmt"
	"hash"
	"reflect"
)

// Object wraps a host Context so that a path ending at a sub-context still
// evaluates to a Value. Two objects are equal when they wrap the same host.
type Object struct {
	ctx Context
}

// NewObject wraps ctx.
func NewObject(ctx Context) Object {
	return Object{ctx: ctx}
}

// Context returns the wrapped host.
func (o Object) Context() Context {
	return o.ctx
}

func (o Object) Kind() Kind               { return KindObject }
func (o Object) Guarantee() TypeGuarantee { return GuaranteeReference }
func (o Object) PropertyValue() Value     { return o }

// Equal reports whether other wraps the identical host context.
func (o Object) Equal(other Value) bool {
	x, ok := other.(Object)
	if !ok {
		return false
	}
	if o.ctx == nil || x.ctx == nil {
		return o.ctx == nil && x.ctx == nil
	}
	if !reflect.TypeOf(o.ctx).Comparable() || reflect.TypeOf(o.ctx) != reflect.TypeOf(x.ctx) {
		return false
	}
	return o.ctx == x.ctx
}

func (o Object) String() string {
	if s, ok := o.ctx.(fmt.Stringer); ok {
		return "<" + s.String() + ">"
	}
	return fmt.Sprintf("<%T>", o.ctx)
}

func (o Object) writeHash(h hash.Hash) {
	h.Write([]byte{byte(KindObject)})
	// Objects wrapping hosts of the same type share a hash.
	name := fmt.Sprintf("%T", o.ctx)
	writeLen(h, len(name))
	h.Write([]byte(name))
}
