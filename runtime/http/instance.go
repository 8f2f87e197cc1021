// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/z5labs/bootstrap"
	"github.com/z5labs/bootstrap/config"
	"github.com/z5labs/bootstrap/future"
	"github.com/z5labs/bootstrap/lifecycle"
	"github.com/z5labs/bootstrap/pkg/slogfield"

	"golang.org/x/sync/errgroup"
)

// Instance is a running http.Server. It implements the [bootstrap.Instance] interface.
type Instance struct {
	log *slog.Logger
	cfg config.Configuration
	ls  net.Listener
	srv *http.Server
	g   *errgroup.Group

	state           atomic.Int32
	shutdownTimeout time.Duration
	postStop        lifecycle.Hook

	// stopReq hands the context of the first Stop to the shutdown goroutine.
	stopReq  chan context.Context
	graceful atomic.Bool

	stopOnce sync.Once
	stopped  *future.Future[bootstrap.StopResult]
}

// Configuration implements the [bootstrap.Instance] interface. The port
// is always the port the server is actually listening on.
func (inst *Instance) Configuration() config.Configuration {
	return inst.cfg
}

// Addr returns the address the server is listening on.
func (inst *Instance) Addr() net.Addr {
	return inst.ls.Addr()
}

// State returns the current lifecycle state of inst.
func (inst *Instance) State() bootstrap.State {
	return bootstrap.State(inst.state.Load())
}

// Unwrap implements the [bootstrap.Instance] interface. It returns the underlying *http.Server.
func (inst *Instance) Unwrap() any {
	return inst.srv
}

// Stop implements the [bootstrap.Instance] interface.
//
// In-flight requests are given until ctx is done, or the shutdown timeout
// elapses, to complete before the remaining connections are closed.
func (inst *Instance) Stop(ctx context.Context) *future.Future[bootstrap.StopResult] {
	inst.stopOnce.Do(func() {
		inst.stopped = future.Go(ctx, inst.stop)
	})
	return inst.stopped
}

// serve runs the server and its shutdown in g. Shutdown begins once
// Stop is called or as soon as the server fails.
func (inst *Instance) serve(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := inst.srv.Serve(inst.ls)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		inst.log.Error("server encountered unexpected error", slogfield.Error(err))
		inst.advance(bootstrap.StateStopped)
		return err
	})
	g.Go(func() error {
		stopCtx := context.WithoutCancel(gctx)
		requested := false
		select {
		case <-gctx.Done():
		case stopCtx = <-inst.stopReq:
			requested = true
		}

		shutdownCtx, cancel := context.WithTimeout(stopCtx, inst.shutdownTimeout)
		defer cancel()

		err := inst.srv.Shutdown(shutdownCtx)
		if err != nil {
			return errors.Join(err, inst.srv.Close())
		}
		inst.graceful.Store(requested)
		return nil
	})
	inst.g = g
}

func (inst *Instance) stop(ctx context.Context) (bootstrap.StopResult, error) {
	inst.log.InfoContext(ctx, "stopping server")
	begin := time.Now()
	inst.transition(bootstrap.StateRunning, bootstrap.StateStopping)

	inst.stopReq <- ctx
	serveErr := inst.g.Wait()
	inst.advance(bootstrap.StateStopped)

	res := StopResult{srv: inst.srv, graceful: serveErr == nil && inst.graceful.Load()}
	hookErr := inst.postStop.Run(context.WithoutCancel(ctx))

	err := errors.Join(serveErr, hookErr)
	if err != nil {
		inst.log.ErrorContext(ctx, "failed to stop server gracefully", slogfield.Graceful(res.graceful), slogfield.Error(err))
		return res, StopError{Cause: err}
	}
	inst.log.InfoContext(ctx, "stopped server", slogfield.Graceful(res.graceful), slogfield.Elapsed(time.Since(begin)))
	return res, nil
}

// advance moves inst forward to s. A state is never left for an
// earlier one, so once STOPPED an instance stays STOPPED.
func (inst *Instance) advance(s bootstrap.State) bool {
	for {
		cur := bootstrap.State(inst.state.Load())
		if s <= cur {
			return false
		}
		if inst.transition(cur, s) {
			return true
		}
	}
}

func (inst *Instance) transition(from, to bootstrap.State) bool {
	if !inst.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	inst.log.Debug("server state changed", slogfield.State(to))
	return true
}

func (inst *Instance) started(context.Context) bool {
	return inst.State() != bootstrap.StateStarting
}

func (inst *Instance) alive(context.Context) bool {
	s := inst.State()
	return s == bootstrap.StateRunning || s == bootstrap.StateStopping
}

func (inst *Instance) ready(context.Context) bool {
	return inst.State() == bootstrap.StateRunning
}

// StopResult implements the [bootstrap.StopResult] interface.
type StopResult struct {
	srv      *http.Server
	graceful bool
}

// Graceful reports whether every in-flight request completed before the server stopped.
func (r StopResult) Graceful() bool {
	return r.graceful
}

// Unwrap implements the [bootstrap.StopResult] interface. It returns the stopped *http.Server.
func (r StopResult) Unwrap() any {
	return r.srv
}
