// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package health provides composable health metrics for a running server.
package health

import (
	"context"
	"sync/atomic"
	"time"
)

// Metric is anything which can report whether it's healthy.
type Metric interface {
	Healthy(context.Context) bool
}

// MetricFunc is a func implementation of the [Metric] interface.
type MetricFunc func(context.Context) bool

func (f MetricFunc) Healthy(ctx context.Context) bool {
	return f(ctx)
}

// Binary is a [Metric] which is flipped by hand, e.g. to take an
// instance out of rotation. The zero value is healthy.
type Binary struct {
	unhealthy atomic.Bool
}

// Toggle flips the state of m.
func (m *Binary) Toggle() {
	for {
		cur := m.unhealthy.Load()
		if m.unhealthy.CompareAndSwap(cur, !cur) {
			return
		}
	}
}

func (m *Binary) Set(healthy bool) {
	m.unhealthy.Store(!healthy)
}

func (m *Binary) Healthy(context.Context) bool {
	return !m.unhealthy.Load()
}

// And is healthy only when every metric is. It short circuits on the
// first unhealthy metric and is healthy when given none.
func And(metrics ...Metric) Metric {
	return MetricFunc(func(ctx context.Context) bool {
		for _, m := range metrics {
			if !m.Healthy(ctx) {
				return false
			}
		}
		return true
	})
}

// Or is healthy when any metric is. It's unhealthy when given none.
func Or(metrics ...Metric) Metric {
	return MetricFunc(func(ctx context.Context) bool {
		for _, m := range metrics {
			if m.Healthy(ctx) {
				return true
			}
		}
		return false
	})
}

func Not(m Metric) Metric {
	return MetricFunc(func(ctx context.Context) bool {
		return !m.Healthy(ctx)
	})
}

// Within reports m as unhealthy if it doesn't answer within d. The
// context passed to m is cancelled once d elapses.
func Within(d time.Duration, m Metric) Metric {
	return MetricFunc(func(ctx context.Context) bool {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		healthy := make(chan bool, 1)
		go func() {
			healthy <- m.Healthy(ctx)
		}()

		select {
		case <-ctx.Done():
			return false
		case ok := <-healthy:
			return ok
		}
	})
}
