// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package noop

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogHandler(t *testing.T) {
	t.Run("will not enable any level", func(t *testing.T) {
		levels := []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}
		for _, lvl := range levels {
			assert.False(t, LogHandler{}.Enabled(context.Background(), lvl), lvl.String())
		}
	})

	t.Run("will return itself", func(t *testing.T) {
		var h slog.Handler = LogHandler{}
		assert.Equal(t, h, h.WithAttrs([]slog.Attr{slog.String("k", "v")}))
		assert.Equal(t, h, h.WithGroup("group"))
	})
}
