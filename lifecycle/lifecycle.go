// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package lifecycle provides hooks which run relative to the start and stop of a server instance.
//
// Post start hooks run in the order they were registered. Post stop
// hooks unwind in reverse, the same way deferred calls do, so a hook
// pair registered together brackets everything registered after it.
package lifecycle

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// Hook is work done at a specific point in the lifecycle of a server instance.
type Hook interface {
	Run(context.Context) error
}

// HookFunc is a func variant of the [Hook] interface.
type HookFunc func(context.Context) error

func (f HookFunc) Run(ctx context.Context) error {
	return f(ctx)
}

type hooks []Hook

func (hs hooks) Run(ctx context.Context) error {
	var errs []error
	for _, h := range hs {
		if h == nil {
			continue
		}
		if err := h.Run(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}

// MultiHook runs hooks sequentially. A failing hook doesn't prevent
// the rest from running and all failures are joined. Nil hooks are skipped.
func MultiHook(hs ...Hook) Hook {
	return hooks(hs)
}

// Context collects the [Hook]s of a server instance. It's safe for concurrent use.
type Context struct {
	mu         sync.Mutex
	postStarts hooks
	postStops  hooks
}

// OnPostStart registers hook to run once the instance serves requests.
func (c *Context) OnPostStart(hook Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.postStarts = append(c.postStarts, hook)
}

// PostStart is every hook given to [Context.OnPostStart] in registration order.
func (c *Context) PostStart() Hook {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.postStarts)
}

// OnPostStop registers hook to run once the instance stopped,
// whether or not it stopped gracefully.
func (c *Context) OnPostStop(hook Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.postStops = append(c.postStops, hook)
}

// PostStop is every hook given to [Context.OnPostStop] in reverse registration order.
func (c *Context) PostStop() Hook {
	c.mu.Lock()
	defer c.mu.Unlock()
	hs := slices.Clone(c.postStops)
	slices.Reverse(hs)
	return hs
}

type contextKey struct{}

// NewContext returns a copy of parent carrying c. Providers pick it up
// when starting an instance with the returned context.
func NewContext(parent context.Context, c *Context) context.Context {
	return context.WithValue(parent, contextKey{}, c)
}

func FromContext(ctx context.Context) (*Context, bool) {
	c, ok := ctx.Value(contextKey{}).(*Context)
	return c, ok
}
