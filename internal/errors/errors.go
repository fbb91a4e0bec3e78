// Package errors defines the error taxonomy shared by the rules engine.
//
// Import it as cdterr to avoid shadowing the standard library package.
package errors

import (
	"errors"
	"fmt"
)

// Code categorizes an error for the public boundary.
type Code string

const (
	// CodeUnknown marks errors that did not originate in this module.
	CodeUnknown Code = "unknown"
	// CodeValidation marks bad or missing input: actor, attribute name, item type, formula characters.
	CodeValidation Code = "validation"
	// CodeResource marks insufficient PM or ammunition.
	CodeResource Code = "resource"
	// CodeFormula marks a malformed dice expression.
	CodeFormula Code = "formula"
	// CodePersistence marks a failed store write or read.
	CodePersistence Code = "persistence"
)

// Error is an application error carrying a Code and optional metadata.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

// Error returns the message, followed by the cause when present.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta attaches a key/value pair and returns e for chaining.
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with the given code and a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with message, preserving the code of a wrapped *Error.
//
// Postcondition: returns nil iff err is nil.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	var inner *Error
	if errors.As(err, &inner) {
		return &Error{Code: inner.Code, Message: message, Cause: err, Meta: copyMeta(inner.Meta)}
	}
	return &Error{Code: CodeUnknown, Message: message, Cause: err}
}

// WrapWithCode wraps err and forces the given code.
//
// Postcondition: returns nil iff err is nil.
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, message)
	wrapped.Code = code
	return wrapped
}

// Validation creates a validation error.
func Validation(message string) *Error { return New(CodeValidation, message) }

// Validationf creates a formatted validation error.
func Validationf(format string, args ...any) *Error { return Newf(CodeValidation, format, args...) }

// Resourcef creates a formatted resource error.
func Resourcef(format string, args ...any) *Error { return Newf(CodeResource, format, args...) }

// Formulaf creates a formatted formula error.
func Formulaf(format string, args ...any) *Error { return Newf(CodeFormula, format, args...) }

// Persistence wraps a store failure.
func Persistence(err error, message string) *Error {
	return WrapWithCode(err, CodePersistence, message)
}

// CodeOf returns the code of the outermost *Error in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
