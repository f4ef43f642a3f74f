package recalc

import (
	"errors"
	"strings"
)

// ErrCircularDependency is matched by every *CycleError via errors.Is.
var ErrCircularDependency = errors.New("recalc: circular dependency")

// ErrDisposed is returned when mutating a Variable after Dispose.
var ErrDisposed = errors.New("recalc: variable disposed")

// ErrReferenceInUse is returned when content contains a Reference that
// already belongs to another Variable's content.
var ErrReferenceInUse = errors.New("recalc: reference already hosted by another variable")

// CycleError reports a rejected mutation. Path runs from the first variable
// the new content would read to Target.
type CycleError struct {
	Target *Variable
	Path   []*Variable
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return ErrCircularDependency.Error() + ": " + e.PathString()
}

// PathString renders the loop as "a -> b -> a".
func (e *CycleError) PathString() string {
	names := make([]string, 0, len(e.Path)+1)
	names = append(names, e.Target.Name())
	for _, v := range e.Path {
		names = append(names, v.Name())
	}
	return strings.Join(names, " -> ")
}

// Is reports whether target is ErrCircularDependency.
func (e *CycleError) Is(target error) bool {
	return target == ErrCircularDependency
}
