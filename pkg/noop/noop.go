// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package noop provides implementations which discard everything given to them.
package noop

import (
	"context"
	"log/slog"
)

// LogHandler is a slog.Handler which discards every record. It reports
// every level as disabled so loggers skip building records altogether.
type LogHandler struct{}

// Enabled implements the slog.Handler interface.
func (LogHandler) Enabled(context.Context, slog.Level) bool { return false }

// Handle implements the slog.Handler interface.
func (LogHandler) Handle(context.Context, slog.Record) error { return nil }

// WithAttrs implements the slog.Handler interface.
func (h LogHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

// WithGroup implements the slog.Handler interface.
func (h LogHandler) WithGroup(string) slog.Handler { return h }
