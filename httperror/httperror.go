// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package httperror provides errors which carry an HTTP response status
// and the mapping of arbitrary errors to HTTP responses.
package httperror

import (
	"fmt"
	"net/http"
	"strconv"
)

// Error is an error which should be reported to the client with Status.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`

	// Location is the target of a redirection.
	Location string `json:"-"`

	Cause error `json:"-"`
}

// New returns an [Error] for status. A status outside of the 3xx to 5xx
// range results in a 500.
func New(status int, msg string) *Error {
	if status < 300 || status > 599 {
		status = http.StatusInternalServerError
	}
	return &Error{
		Status:  status,
		Message: msg,
	}
}

// Wrap returns an [Error] for status caused by err. The message
// is the standard status text.
func Wrap(err error, status int) *Error {
	e := New(status, "")
	e.Message = http.StatusText(e.Status)
	e.Cause = err
	return e
}

// Error implements the [builtin.error] interface.
func (e *Error) Error() string {
	msg := strconv.Itoa(e.Status) + " " + http.StatusText(e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Cause)
	}
	return msg
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e *Error) Unwrap() error {
	return e.Cause
}

// Family returns the [Family] of the status of e.
func (e *Error) Family() Family {
	return FamilyOf(e.Status)
}

// Redirection returns a 3xx [Error] pointing the client to location.
func Redirection(status int, location string) *Error {
	if status < 300 || status > 399 {
		status = http.StatusSeeOther
	}
	return &Error{
		Status:   status,
		Location: location,
	}
}

// BadRequest returns a 400 [Error].
func BadRequest(msg string) *Error {
	return New(http.StatusBadRequest, msg)
}

// NotAuthorized returns a 401 [Error].
func NotAuthorized(msg string) *Error {
	return New(http.StatusUnauthorized, msg)
}

// Forbidden returns a 403 [Error].
func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, msg)
}

// NotFound returns a 404 [Error].
func NotFound(msg string) *Error {
	return New(http.StatusNotFound, msg)
}

// NotAllowed returns a 405 [Error].
func NotAllowed(msg string) *Error {
	return New(http.StatusMethodNotAllowed, msg)
}

// NotAcceptable returns a 406 [Error].
func NotAcceptable(msg string) *Error {
	return New(http.StatusNotAcceptable, msg)
}

// NotSupported returns a 415 [Error].
func NotSupported(msg string) *Error {
	return New(http.StatusUnsupportedMediaType, msg)
}

// InternalServerError returns a 500 [Error].
func InternalServerError(msg string) *Error {
	return New(http.StatusInternalServerError, msg)
}

// ServiceUnavailable returns a 503 [Error].
func ServiceUnavailable(msg string) *Error {
	return New(http.StatusServiceUnavailable, msg)
}

// Family is a class of HTTP status codes.
type Family int

const (
	FamilyOther Family = iota
	FamilyInformational
	FamilySuccessful
	FamilyRedirection
	FamilyClientError
	FamilyServerError
)

// FamilyOf returns the [Family] status belongs to.
func FamilyOf(status int) Family {
	switch status / 100 {
	case 1:
		return FamilyInformational
	case 2:
		return FamilySuccessful
	case 3:
		return FamilyRedirection
	case 4:
		return FamilyClientError
	case 5:
		return FamilyServerError
	default:
		return FamilyOther
	}
}

// String implements the [fmt.Stringer] interface.
func (f Family) String() string {
	switch f {
	case FamilyInformational:
		return "INFORMATIONAL"
	case FamilySuccessful:
		return "SUCCESSFUL"
	case FamilyRedirection:
		return "REDIRECTION"
	case FamilyClientError:
		return "CLIENT_ERROR"
	case FamilyServerError:
		return "SERVER_ERROR"
	default:
		return "OTHER"
	}
}
