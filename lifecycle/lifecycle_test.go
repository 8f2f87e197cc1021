// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(calls *[]string, name string, err error) Hook {
	return HookFunc(func(context.Context) error {
		*calls = append(*calls, name)
		return err
	})
}

func TestMultiHook(t *testing.T) {
	t.Run("will run every hook in order", func(t *testing.T) {
		var calls []string
		err := MultiHook(record(&calls, "one", nil), nil, record(&calls, "two", nil)).Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two"}, calls)
	})

	t.Run("will return the error", func(t *testing.T) {
		t.Run("as is if a single hook failed", func(t *testing.T) {
			oneErr := errors.New("one")

			var calls []string
			err := MultiHook(record(&calls, "one", oneErr), record(&calls, "two", nil)).Run(context.Background())

			assert.Equal(t, oneErr, err)
			assert.Equal(t, []string{"one", "two"}, calls)
		})

		t.Run("joined if multiple hooks failed", func(t *testing.T) {
			oneErr := errors.New("one")
			twoErr := errors.New("two")

			var calls []string
			err := MultiHook(record(&calls, "one", oneErr), record(&calls, "two", twoErr)).Run(context.Background())

			assert.ErrorIs(t, err, oneErr)
			assert.ErrorIs(t, err, twoErr)
		})
	})
}

func TestContext(t *testing.T) {
	t.Run("will run post start hooks in registration order", func(t *testing.T) {
		var calls []string
		var lc Context
		lc.OnPostStart(record(&calls, "db", nil))
		lc.OnPostStart(record(&calls, "cache", nil))

		err := lc.PostStart().Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"db", "cache"}, calls)
	})

	t.Run("will run post stop hooks in reverse registration order", func(t *testing.T) {
		var calls []string
		var lc Context
		lc.OnPostStop(record(&calls, "db", nil))
		lc.OnPostStop(record(&calls, "cache", nil))

		err := lc.PostStop().Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"cache", "db"}, calls)
	})

	t.Run("will not see hooks registered after the snapshot", func(t *testing.T) {
		var calls []string
		var lc Context
		lc.OnPostStart(record(&calls, "before", nil))

		h := lc.PostStart()
		lc.OnPostStart(record(&calls, "after", nil))

		err := h.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"before"}, calls)
	})

	t.Run("will round trip through a context.Context", func(t *testing.T) {
		lc := &Context{}
		ctx := NewContext(context.Background(), lc)

		got, ok := FromContext(ctx)
		require.True(t, ok)
		assert.Same(t, lc, got)

		_, ok = FromContext(context.Background())
		assert.False(t, ok)
	})
}
