// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/z5labs/bootstrap/config"
	"github.com/z5labs/bootstrap/future"
	"github.com/z5labs/bootstrap/internal/try"
)

// Unwrapper exposes a provider native object, if one exists.
type Unwrapper interface {
	Unwrap() any
}

// StopResult is the provider defined outcome of stopping an [Instance].
type StopResult interface {
	Unwrapper
}

// Instance is a handle to a single running server.
type Instance interface {
	Unwrapper

	// Configuration returns the effective configuration of the running
	// server. It may differ from the requested one, e.g. the port
	// will be the actual bound port when a free port was requested.
	Configuration() config.Configuration

	// Stop gracefully stops the server. Only the first call initiates
	// a stop, subsequent calls return the same [future.Future].
	Stop(context.Context) *future.Future[StopResult]
}

// Provider is an implementation capable of serving an [Application].
type Provider interface {
	// NewConfigurationBuilder returns a [config.Builder] which
	// supports the provider specific properties.
	NewConfigurationBuilder() *config.Builder

	// Bootstrap starts serving app according to cfg. It should return
	// immediately and report any startup failure through the returned future.
	Bootstrap(ctx context.Context, app Application, cfg config.Configuration) *future.Future[Instance]
}

// ConfigurationBuilder returns a new [config.Builder] for p. If p is nil,
// a builder supporting only the well-known properties is returned.
func ConfigurationBuilder(p Provider) *config.Builder {
	if p == nil {
		return config.NewBuilder()
	}
	b := p.NewConfigurationBuilder()
	if b == nil {
		return config.NewBuilder()
	}
	return b
}

var (
	// ErrNilProvider is the cause of a [StartError] if no [Provider] is given.
	ErrNilProvider = errors.New("provider must not be nil")

	// ErrNilApplication is the cause of a [StartError] if no [Application] is given.
	ErrNilApplication = errors.New("application must not be nil")

	// ErrNilFuture is the cause of a [StartError] if a [Provider] returns a nil future.
	ErrNilFuture = errors.New("provider returned a nil future")

	// ErrNilInstance is the cause of a [StartError] if a [Provider] future
	// succeeds without an [Instance].
	ErrNilInstance = errors.New("provider resolved a nil instance")
)

// StartError is the failure of a [Start] future.
type StartError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e StartError) Error() string {
	return fmt.Sprintf("failed to start application: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e StartError) Unwrap() error {
	return e.Cause
}

// Start asks p to serve app using cfg. It never blocks and never panics,
// any failure is reported as a [StartError] by the returned future.
//
// A single attempt is made. Retrying is up to the caller.
func Start(ctx context.Context, p Provider, app Application, cfg config.Configuration) *future.Future[Instance] {
	if p == nil {
		return future.Failed[Instance](StartError{Cause: ErrNilProvider})
	}
	if app == nil {
		return future.Failed[Instance](StartError{Cause: ErrNilApplication})
	}

	f, err := bootstrap(ctx, p, app, cfg)
	if err != nil {
		return future.Failed[Instance](StartError{Cause: err})
	}
	if f == nil {
		return future.Failed[Instance](StartError{Cause: ErrNilFuture})
	}

	promise := future.NewPromise[Instance]()
	f.OnDone(func(inst Instance, err error) {
		if err != nil {
			promise.Reject(StartError{Cause: err})
			return
		}
		if isNil(inst) {
			promise.Reject(StartError{Cause: ErrNilInstance})
			return
		}
		promise.Resolve(inst)
	})
	return promise.Future()
}

func isNil(inst Instance) bool {
	if inst == nil {
		return true
	}
	v := reflect.ValueOf(inst)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func bootstrap(ctx context.Context, p Provider, app Application, cfg config.Configuration) (f *future.Future[Instance], err error) {
	defer try.Recover(&err)

	return p.Bootstrap(ctx, app, cfg), nil
}

// UnwrapTypeError is returned by [Unwrap] when the native
// object is not of the requested type.
type UnwrapTypeError struct {
	Expected reflect.Type
	Actual   reflect.Type
}

// Error implements the [builtin.error] interface.
func (e UnwrapTypeError) Error() string {
	return fmt.Sprintf("can not unwrap %s as %s", e.Actual, e.Expected)
}

// Unwrap returns the provider native object of u as a T. If u has no native
// object the zero value of T and a nil error are returned.
func Unwrap[T any](u Unwrapper) (T, error) {
	var zero T
	if u == nil {
		return zero, nil
	}
	v := u.Unwrap()
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, UnwrapTypeError{
			Expected: reflect.TypeFor[T](),
			Actual:   reflect.TypeOf(v),
		}
	}
	return t, nil
}
