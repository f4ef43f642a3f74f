package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/vango-dev/recalc/pkg/exprjson"
	"github.com/vango-dev/recalc/pkg/recalc"
)

// Category represents the type of error.
type Category string

const (
	CategoryStructure Category = "structure"
	CategoryDocument  Category = "document"
	CategoryLookup    Category = "lookup"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// RecalcError is a structured error with a stable code and a fix suggestion.
type RecalcError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (structure, document, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Subject names what the error is about: a variable, a file, a field.
	Subject string

	// Cycle lists the variable names of a rejected circular dependency.
	Cycle []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example shows the correct approach.
	Example string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *RecalcError) Error() string {
	msg := e.Message
	if e.Subject != "" {
		msg += " (" + e.Subject + ")"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *RecalcError) Unwrap() error {
	return e.Wrapped
}

// WithSubject records what the error is about.
func (e *RecalcError) WithSubject(s string) *RecalcError {
	e.Subject = s
	return e
}

// WithCycle records the names along a rejected cycle.
func (e *RecalcError) WithCycle(names []string) *RecalcError {
	e.Cycle = names
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *RecalcError) WithSuggestion(s string) *RecalcError {
	e.Suggestion = s
	return e
}

// WithExample adds an example to the error.
func (e *RecalcError) WithExample(ex string) *RecalcError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *RecalcError) WithDetail(d string) *RecalcError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *RecalcError) Wrap(err error) *RecalcError {
	e.Wrapped = err
	return e
}

// New creates a RecalcError from a registered error code.
func New(code string) *RecalcError {
	template, ok := registry[code]
	if !ok {
		return &RecalcError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &RecalcError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new RecalcError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *RecalcError {
	return &RecalcError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a RecalcError.
func FromError(err error, code string) *RecalcError {
	if err == nil {
		return nil
	}
	var re *RecalcError
	if stderrors.As(err, &re) {
		return re
	}
	return New(code).Wrap(err)
}

// Classify maps errors returned by the engine and the document decoder to
// their codes. Unrecognized errors are wrapped as E020.
func Classify(err error) *RecalcError {
	if err == nil {
		return nil
	}
	var re *RecalcError
	if stderrors.As(err, &re) {
		return re
	}

	var cycle *recalc.CycleError
	switch {
	case stderrors.As(err, &cycle):
		names := []string{cycle.Target.Name()}
		for _, v := range cycle.Path {
			names = append(names, v.Name())
		}
		return New("E001").WithSubject(cycle.Target.Name()).WithCycle(names).Wrap(err)
	case stderrors.Is(err, exprjson.ErrUnknownFunction):
		return New("E002").Wrap(err)
	case stderrors.Is(err, exprjson.ErrInvalidDocument):
		return New("E003").Wrap(err)
	case stderrors.Is(err, recalc.ErrDisposed):
		return New("E005").Wrap(err)
	case stderrors.Is(err, recalc.ErrReferenceInUse):
		return New("E006").Wrap(err)
	default:
		return New("E020").Wrap(err)
	}
}
