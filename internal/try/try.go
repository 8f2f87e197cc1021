// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package try converts panics and deferred close failures into errors.
package try

import (
	"errors"
	"fmt"
	"io"
	"runtime/debug"
)

// PanicError is a recovered panic. Stack is the goroutine stack
// at the point of recovery.
type PanicError struct {
	Value any
	Stack []byte
}

func (e PanicError) Error() string {
	return fmt.Sprintf("recovered from panic: %v", e.Value)
}

// Unwrap returns Value when it's an error, so a panic(err) still
// matches errors.Is(err).
func (e PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Recover must be called via defer. A recovered panic is joined with *err.
func Recover(err *error) {
	v := recover()
	if v == nil {
		return
	}
	*err = errors.Join(*err, PanicError{
		Value: v,
		Stack: debug.Stack(),
	})
}

// CloseError is a failure from a deferred Close.
type CloseError struct {
	Cause error
}

func (e CloseError) Error() string {
	return fmt.Sprintf("failed to close: %s", e.Cause)
}

func (e CloseError) Unwrap() error {
	return e.Cause
}

// Close must be called via defer. It closes v, if v is an io.Closer,
// and joins a failure with *err. Readers which aren't closers are
// accepted so callers needn't type assert first.
func Close(err *error, v any) {
	c, ok := v.(io.Closer)
	if !ok {
		return
	}
	if cerr := c.Close(); cerr != nil {
		*err = errors.Join(*err, CloseError{Cause: cerr})
	}
}
