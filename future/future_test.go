// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package future

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/z5labs/bootstrap/internal/try"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromise(t *testing.T) {
	t.Run("will only resolve once", func(t *testing.T) {
		p := NewPromise[int]()

		assert.True(t, p.Resolve(1))
		assert.False(t, p.Resolve(2))
		assert.False(t, p.Reject(errors.New("too late")))

		v, err := p.Future().Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	})

	t.Run("will only resolve once under contention", func(t *testing.T) {
		p := NewPromise[int]()

		var (
			wg  sync.WaitGroup
			mu  sync.Mutex
			won int
		)
		for i := range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if p.Resolve(i) {
					mu.Lock()
					won++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, won)
	})
}

func TestFuture_Result(t *testing.T) {
	t.Run("will return ErrPending", func(t *testing.T) {
		t.Run("if the future hasn't resolved", func(t *testing.T) {
			p := NewPromise[string]()

			_, err := p.Future().Result()
			assert.ErrorIs(t, err, ErrPending)
		})
	})

	t.Run("will return the outcome", func(t *testing.T) {
		t.Run("if the future resolved", func(t *testing.T) {
			v, err := Resolved("hello").Result()
			require.NoError(t, err)
			assert.Equal(t, "hello", v)
		})

		t.Run("if the future failed", func(t *testing.T) {
			failErr := errors.New("failed")

			_, err := Failed[string](failErr).Result()
			assert.ErrorIs(t, err, failErr)
		})
	})
}

func TestFuture_Await(t *testing.T) {
	t.Run("will return the context error", func(t *testing.T) {
		t.Run("if the context is done before the future resolves", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := NewPromise[int]().Future().Await(ctx)
			assert.ErrorIs(t, err, context.Canceled)
		})
	})
}

func TestGo(t *testing.T) {
	t.Run("will resolve with the returned value", func(t *testing.T) {
		f := Go(context.Background(), func(ctx context.Context) (int, error) {
			return 42, nil
		})

		v, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("will fail", func(t *testing.T) {
		t.Run("if the func returns an error", func(t *testing.T) {
			goErr := errors.New("failed")
			f := Go(context.Background(), func(ctx context.Context) (int, error) {
				return 0, goErr
			})

			_, err := f.Await(context.Background())
			assert.ErrorIs(t, err, goErr)
		})

		t.Run("if the func panics", func(t *testing.T) {
			f := Go(context.Background(), func(ctx context.Context) (int, error) {
				panic("boom")
			})

			_, err := f.Await(context.Background())

			var perr try.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			assert.Equal(t, "boom", perr.Value)
		})
	})
}

func TestFuture_OnDone(t *testing.T) {
	p := NewPromise[int]()

	called := make(chan int, 1)
	p.Future().OnDone(func(v int, err error) {
		called <- v
	})
	p.Resolve(7)

	select {
	case v := <-called:
		assert.Equal(t, 7, v)
	case <-time.After(5 * time.Second):
		t.Fatal("callback was never called")
	}
}

func TestThen(t *testing.T) {
	t.Run("will map the resolved value", func(t *testing.T) {
		f := Then(Resolved(2), func(n int) (string, error) {
			if n == 2 {
				return "two", nil
			}
			return "", errors.New("unexpected")
		})

		v, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "two", v)
	})

	t.Run("will not call fn", func(t *testing.T) {
		t.Run("if the source future failed", func(t *testing.T) {
			srcErr := errors.New("failed")
			called := false

			f := Then(Failed[int](srcErr), func(n int) (int, error) {
				called = true
				return n, nil
			})

			_, err := f.Await(context.Background())
			assert.ErrorIs(t, err, srcErr)
			assert.False(t, called)
		})
	})
}
