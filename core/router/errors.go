package router

import (
	"errors"
	"fmt"
)

var (
	// Mux errors
	ErrNoContextFactory = errors.New("no context factory provided")
	ErrNotFound         = errors.New("not found")
	ErrInvalidMethod    = errors.New("invalid http method")
	ErrNilRouter        = errors.New("nil router")
	ErrNilSubrouter     = errors.New("nil subrouter")
	ErrNilHandler       = errors.New("nil handler")

	// Pattern errors
	ErrInvalidPattern  = errors.New("invalid route path pattern")
	ErrEmptyParamName  = errors.New("parameter name must not be empty")
	ErrInvalidWildcard = errors.New("invalid wildcard count range")
	ErrDuplicateParam  = errors.New("duplicate parameter name")

	// Chain errors
	ErrNextCalledTwice = errors.New("middleware invoked continuation multiple times")
)

// PanicError allows external error handlers to detect and handle panics.
// When a panic is recovered by the router, it's wrapped in an error that
// implements this interface, providing access to the original panic
// value and stack trace.
type PanicError interface {
	error
	// Value returns the original panic value.
	Value() any
	// Stack returns the stack trace captured at the panic point.
	Stack() []byte
}

// panicError is the private implementation of PanicError interface.
type panicError struct {
	value any
	stack []byte
}

// Error implements the error interface.
func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// Value returns the original panic value.
func (e *panicError) Value() any {
	return e.value
}

// Stack returns the stack trace.
func (e *panicError) Stack() []byte {
	return e.stack
}

// Unwrap allows errors.Is/As to work with wrapped panics.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
