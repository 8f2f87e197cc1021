// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelslog correlates slog records with the span carried by
// their context.
package otelslog

import (
	"context"
	"log/slog"

	"github.com/z5labs/bootstrap/pkg/slogfield"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type options struct {
	eventLevel *slog.Level
}

// Option configures a [Handler].
type Option func(*options)

// SpanEvents also records every record at or above lvl as an event
// on the span in its context.
func SpanEvents(lvl slog.Level) Option {
	return func(o *options) {
		o.eventLevel = &lvl
	}
}

// Handler adds an "otel" group holding the trace id, span id and
// sampling decision to records logged within a valid span.
type Handler struct {
	slog       slog.Handler
	eventLevel *slog.Level
}

// NewHandler wraps h. Wrapping a *Handler without options returns it as is.
func NewHandler(h slog.Handler, opts ...Option) *Handler {
	if oh, ok := h.(*Handler); ok && len(opts) == 0 {
		return oh
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return &Handler{
		slog:       h,
		eventLevel: o.eventLevel,
	}
}

// New is shorthand for slog.New(NewHandler(h, opts...)).
func New(h slog.Handler, opts ...Option) *slog.Logger {
	return slog.New(NewHandler(h, opts...))
}

func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.slog.Enabled(ctx, lvl)
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	span := trace.SpanFromContext(ctx)
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return h.slog.Handle(ctx, record)
	}

	if h.eventLevel != nil && record.Level >= *h.eventLevel && span.IsRecording() {
		span.AddEvent(record.Message, trace.WithAttributes(eventAttributes(record)...))
	}

	r := record.Clone()
	r.AddAttrs(
		slog.Group(
			"otel",
			slogfield.String("trace_id", spanCtx.TraceID().String()),
			slogfield.String("span_id", spanCtx.SpanID().String()),
			slogfield.Bool("sampled", spanCtx.IsSampled()),
		),
	)
	return h.slog.Handle(ctx, r)
}

func eventAttributes(record slog.Record) []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, record.NumAttrs()+1)
	kvs = append(kvs, attribute.String("log.severity", record.Level.String()))
	record.Attrs(func(a slog.Attr) bool {
		kvs = append(kvs, attribute.String(a.Key, a.Value.Resolve().String()))
		return true
	})
	return kvs
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		slog:       h.slog.WithAttrs(attrs),
		eventLevel: h.eventLevel,
	}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		slog:       h.slog.WithGroup(name),
		eventLevel: h.eventLevel,
	}
}
