// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package health

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type staticMetric bool

func (m staticMetric) Healthy(context.Context) bool {
	return bool(m)
}

var (
	up   = staticMetric(true)
	down = staticMetric(false)
)

func TestBinary(t *testing.T) {
	t.Run("will be healthy by default", func(t *testing.T) {
		var m Binary
		assert.True(t, m.Healthy(context.Background()))
	})

	t.Run("will flip its state when toggled", func(t *testing.T) {
		var m Binary
		m.Toggle()
		assert.False(t, m.Healthy(context.Background()))

		m.Toggle()
		assert.True(t, m.Healthy(context.Background()))
	})

	t.Run("will report the state it was set to", func(t *testing.T) {
		var m Binary
		m.Set(false)
		assert.False(t, m.Healthy(context.Background()))

		m.Set(true)
		assert.True(t, m.Healthy(context.Background()))
	})

	t.Run("will not lose toggles made concurrently", func(t *testing.T) {
		var m Binary
		var wg sync.WaitGroup
		for range 100 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.Toggle()
			}()
		}
		wg.Wait()

		assert.True(t, m.Healthy(context.Background()))
	})
}

func TestCombinators(t *testing.T) {
	testCases := []struct {
		Name    string
		Metric  Metric
		Healthy bool
	}{
		{Name: "and of nothing", Metric: And(), Healthy: true},
		{Name: "and of healthy metrics", Metric: And(up, up), Healthy: true},
		{Name: "and with an unhealthy metric", Metric: And(up, down), Healthy: false},
		{Name: "and with an unhealthy metric first", Metric: And(down, up), Healthy: false},
		{Name: "or of nothing", Metric: Or(), Healthy: false},
		{Name: "or with a healthy metric", Metric: Or(down, up), Healthy: true},
		{Name: "or of unhealthy metrics", Metric: Or(down, down), Healthy: false},
		{Name: "not healthy", Metric: Not(up), Healthy: false},
		{Name: "not unhealthy", Metric: Not(down), Healthy: true},
		{Name: "nested", Metric: And(Or(down, up), Not(down)), Healthy: true},
	}

	for _, testCase := range testCases {
		t.Run("will evaluate "+testCase.Name, func(t *testing.T) {
			assert.Equal(t, testCase.Healthy, testCase.Metric.Healthy(context.Background()))
		})
	}

	t.Run("will short circuit and", func(t *testing.T) {
		called := false
		m := And(down, MetricFunc(func(context.Context) bool {
			called = true
			return true
		}))

		assert.False(t, m.Healthy(context.Background()))
		assert.False(t, called)
	})
}

func TestWithin(t *testing.T) {
	t.Run("will report the metric if it answers in time", func(t *testing.T) {
		assert.True(t, Within(time.Second, up).Healthy(context.Background()))
		assert.False(t, Within(time.Second, down).Healthy(context.Background()))
	})

	t.Run("will be unhealthy if the metric is too slow", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		slow := MetricFunc(func(context.Context) bool {
			<-release
			return true
		})

		assert.False(t, Within(10*time.Millisecond, slow).Healthy(context.Background()))
	})
}
