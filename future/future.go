// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package future provides a single assignment asynchronous result.
package future

import (
	"context"
	"errors"
	"sync"

	"github.com/z5labs/bootstrap/internal/try"
)

// ErrPending is returned by [Future.Result] if the [Future] hasn't resolved yet.
var ErrPending = errors.New("future: not yet resolved")

// Future is the eventual outcome of an asynchronous operation. It
// resolves exactly once, either with a value or an error, and is
// safe for concurrent use.
type Future[T any] struct {
	once sync.Once
	done chan struct{}

	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{
		done: make(chan struct{}),
	}
}

func (f *Future[T]) complete(v T, err error) bool {
	completed := false
	f.once.Do(func() {
		f.value = v
		f.err = err
		close(f.done)
		completed = true
	})
	return completed
}

// Done returns a channel which is closed once f has resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until f resolves or ctx is done, whichever happens first.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-f.done:
		return f.value, f.err
	}
}

// Result returns the outcome of f without blocking. If f
// hasn't resolved yet, [ErrPending] is returned.
func (f *Future[T]) Result() (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
		var zero T
		return zero, ErrPending
	}
}

// OnDone calls fn with the outcome of f, in a separate goroutine, once f resolves.
func (f *Future[T]) OnDone(fn func(T, error)) {
	go func() {
		<-f.done
		fn(f.value, f.err)
	}()
}

// Promise is the write side of a [Future].
type Promise[T any] struct {
	f *Future[T]
}

// NewPromise returns a [Promise] whose [Future] is unresolved.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{f: newFuture[T]()}
}

// Future returns the [Future] resolved by p.
func (p *Promise[T]) Future() *Future[T] {
	return p.f
}

// Resolve completes the [Future] with v. It reports false
// if the [Future] had already been completed.
func (p *Promise[T]) Resolve(v T) bool {
	return p.f.complete(v, nil)
}

// Reject completes the [Future] with err. It reports false
// if the [Future] had already been completed.
func (p *Promise[T]) Reject(err error) bool {
	var zero T
	return p.f.complete(zero, err)
}

// Resolved returns a [Future] which has already resolved to v.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.complete(v, nil)
	return f
}

// Failed returns a [Future] which has already failed with err.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.complete(zero, err)
	return f
}

// Go runs fn in its own goroutine and returns a [Future] for its outcome.
// A panic within fn fails the [Future] with a [try.PanicError].
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	p := NewPromise[T]()
	go func() {
		v, err := call(ctx, fn)
		if err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(v)
	}()
	return p.Future()
}

func call[T any](ctx context.Context, fn func(context.Context) (T, error)) (v T, err error) {
	defer try.Recover(&err)
	return fn(ctx)
}

// Then returns a [Future] for the result of applying fn to the value of f.
// If f fails, fn isn't called and the returned [Future] fails with the same error.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	p := NewPromise[U]()
	f.OnDone(func(v T, err error) {
		if err != nil {
			p.Reject(err)
			return
		}
		u, err := call(context.Background(), func(context.Context) (U, error) {
			return fn(v)
		})
		if err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(u)
	})
	return p.Future()
}
