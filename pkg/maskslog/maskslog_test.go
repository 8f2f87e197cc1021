// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package maskslog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Message string `json:"msg"`
	Secret  string `json:"secret"`
	Public  string `json:"public"`
	Group   struct {
		Secret string `json:"secret"`
	} `json:"group"`
}

func decode(t *testing.T, buf *bytes.Buffer) record {
	t.Helper()

	var r record
	err := json.Unmarshal(buf.Bytes(), &r)
	require.NoError(t, err)
	return r
}

func TestHandler_Handle(t *testing.T) {
	t.Run("will not mask attrs", func(t *testing.T) {
		t.Run("if no masking funcs are registered", func(t *testing.T) {
			var buf bytes.Buffer
			h := NewHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{}))

			logger := slog.New(h)
			logger.Info("hello world", slog.String("secret", "super duper secret value"))

			r := decode(t, &buf)
			assert.Equal(t, "hello world", r.Message)
			assert.Equal(t, "super duper secret value", r.Secret)
		})

		t.Run("if slog.Attr key does not match a masking func", func(t *testing.T) {
			var buf bytes.Buffer
			h := NewHandler(
				slog.NewJSONHandler(&buf, &slog.HandlerOptions{}),
				Attr("random", AnonymousStringAttr),
			)

			logger := slog.New(h)
			logger.Info("hello world", slog.String("secret", "super duper secret value"))

			r := decode(t, &buf)
			assert.Equal(t, "super duper secret value", r.Secret)
		})
	})

	t.Run("will mask attrs", func(t *testing.T) {
		t.Run("if the key matches", func(t *testing.T) {
			var buf bytes.Buffer
			h := NewHandler(
				slog.NewJSONHandler(&buf, &slog.HandlerOptions{}),
				Keys("secret"),
			)

			logger := slog.New(h)
			logger.Info("hello world", slog.String("secret", "super duper secret value"), slog.String("public", "hi"))

			r := decode(t, &buf)
			assert.Equal(t, "hello world", r.Message)
			assert.Equal(t, "****", r.Secret)
			assert.Equal(t, "hi", r.Public)
		})

		t.Run("if the key matches within a group", func(t *testing.T) {
			var buf bytes.Buffer
			h := NewHandler(
				slog.NewJSONHandler(&buf, &slog.HandlerOptions{}),
				Keys("secret"),
			)

			logger := slog.New(h)
			logger.Info("hello world", slog.Group("group", slog.String("secret", "super duper secret value")))

			r := decode(t, &buf)
			assert.Equal(t, "****", r.Group.Secret)
		})

		t.Run("with a custom masking func", func(t *testing.T) {
			var buf bytes.Buffer
			h := NewHandler(
				slog.NewJSONHandler(&buf, &slog.HandlerOptions{}),
				Attr("secret", func(a slog.Attr) slog.Attr {
					return slog.String(a.Key, a.Value.String()[:5]+"...")
				}),
			)

			logger := slog.New(h)
			logger.Info("hello world", slog.String("secret", "super duper secret value"))

			r := decode(t, &buf)
			assert.Equal(t, "super...", r.Secret)
		})
	})
}

func TestHandler_WithAttrs(t *testing.T) {
	t.Run("will not mask attrs", func(t *testing.T) {
		t.Run("if none of the keys match a registered masking func", func(t *testing.T) {
			var buf bytes.Buffer
			var h slog.Handler = NewHandler(
				slog.NewJSONHandler(&buf, &slog.HandlerOptions{}),
				Attr("random", AnonymousStringAttr),
			)
			h = h.WithAttrs([]slog.Attr{slog.String("secret", "super duper secret value")})

			logger := slog.New(h)
			logger.Info("hello world")

			r := decode(t, &buf)
			assert.Equal(t, "super duper secret value", r.Secret)
		})
	})

	t.Run("will mask attrs", func(t *testing.T) {
		t.Run("given to WithAttrs and to later records", func(t *testing.T) {
			var buf bytes.Buffer
			var h slog.Handler = NewHandler(
				slog.NewJSONHandler(&buf, &slog.HandlerOptions{}),
				Keys("secret", "public"),
			)
			h = h.WithAttrs([]slog.Attr{slog.String("secret", "super duper secret value")})

			logger := slog.New(h)
			logger.Info("hello world", slog.String("public", "hi"))

			r := decode(t, &buf)
			assert.Equal(t, "****", r.Secret)
			assert.Equal(t, "****", r.Public)
		})
	})
}

func TestHandler_WithGroup(t *testing.T) {
	t.Run("will mask attrs", func(t *testing.T) {
		t.Run("if they are within the group", func(t *testing.T) {
			var buf bytes.Buffer
			var h slog.Handler = NewHandler(
				slog.NewJSONHandler(&buf, &slog.HandlerOptions{}),
				Keys("secret"),
			)
			h = h.WithGroup("group")

			logger := slog.New(h)
			logger.Info("hello world", slog.String("secret", "super duper secret value"))

			r := decode(t, &buf)
			assert.Equal(t, "****", r.Group.Secret)
		})
	})
}
