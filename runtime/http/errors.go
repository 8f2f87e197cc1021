// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"errors"
	"fmt"
)

// ErrMissingCertificate is returned when HTTPS is requested but the
// configured tls.Config has no way of providing a certificate.
var ErrMissingCertificate = errors.New("https requires a tls.Config with at least one certificate")

var errServerFailed = errors.New("server failed before it was running")

// UnsupportedProtocolError is returned when the requested protocol is neither HTTP nor HTTPS.
type UnsupportedProtocolError struct {
	Protocol string
}

// Error implements the [builtin.error] interface.
func (e UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("unsupported protocol: %s", e.Protocol)
}

// InvalidPortError is returned when the requested port is outside of the valid range.
type InvalidPortError struct {
	Port int
}

// Error implements the [builtin.error] interface.
func (e InvalidPortError) Error() string {
	return fmt.Sprintf("invalid port: %d", e.Port)
}

// ListenError is returned when the provider fails to bind its listener.
type ListenError struct {
	Addr  string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ListenError) Error() string {
	return fmt.Sprintf("failed to listen on %s: %s", e.Addr, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ListenError) Unwrap() error {
	return e.Cause
}

// RouteError is returned when a resource can't be mounted, most
// likely because its pattern conflicts with another one.
type RouteError struct {
	Pattern string
	Cause   error
}

// Error implements the [builtin.error] interface.
func (e RouteError) Error() string {
	return fmt.Sprintf("failed to mount resource %s: %s", e.Pattern, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e RouteError) Unwrap() error {
	return e.Cause
}

// StopError is returned when an [Instance] fails to stop gracefully.
type StopError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e StopError) Error() string {
	return fmt.Sprintf("failed to stop gracefully: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e StopError) Unwrap() error {
	return e.Cause
}
