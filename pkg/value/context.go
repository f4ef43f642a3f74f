package value

// Context is implemented by anything addressable by path segments: vectors,
// host objects, scopes of named cells.
type Context interface {
	// TryGetSubcontext resolves segment to a nested Context.
	TryGetSubcontext(segment string) (Context, bool)

	// TryGetProperty resolves segment to a leaf. The leaf is either a plain
	// Value or a live cell whose PropertyValue changes over time.
	TryGetProperty(segment string) (Property, bool)
}

// Property is a leaf reached through a Context.
// Every Value is a Property whose PropertyValue is itself.
type Property interface {
	PropertyValue() Value
}

// AsContext returns v as a Context when its variant is addressable.
// Object values expose the host context they wrap.
func AsContext(v Value) (Context, bool) {
	switch x := v.(type) {
	case Vector:
		return x, true
	case Object:
		return x.ctx, x.ctx != nil
	default:
		return nil, false
	}
}

// FromContext wraps ctx as a Value. Contexts that already are values are
// returned unchanged.
func FromContext(ctx Context) Value {
	if v, ok := ctx.(Value); ok {
		return v
	}
	return NewObject(ctx)
}
