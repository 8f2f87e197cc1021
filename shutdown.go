// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// StopOnShutdown stops inst once one of the given signals is received or ctx
// is done. If no signals are given, [os.Interrupt] and [syscall.SIGTERM] are used.
//
// The outcome of the stop is passed to f, which may be nil. The returned
// channel is closed after f returns.
func StopOnShutdown(ctx context.Context, inst Instance, f func(StopResult, error), signals ...os.Signal) <-chan struct{} {
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}

	sigCtx, cancel := signal.NotifyContext(ctx, signals...)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()

		<-sigCtx.Done()

		stopCtx := context.WithoutCancel(ctx)
		res, err := inst.Stop(stopCtx).Await(stopCtx)
		if f != nil {
			f(res, err)
		}
	}()
	return done
}
