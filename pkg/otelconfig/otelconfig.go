// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelconfig provides OpenTelemetry tracer provider initializers
// which can be selected through a [config.Configuration].
package otelconfig

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/z5labs/bootstrap/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Configuration property names read by [FromConfiguration].
const (
	ExporterKey    = "otel.exporter"
	ServiceNameKey = "otel.serviceName"
	OTLPTargetKey  = "otel.otlp.target"
	GCPProjectKey  = "otel.gcp.projectId"
	SampleRatioKey = "otel.sampleRatio"
)

// Properties returns the configuration properties read by [FromConfiguration].
// They're meant to be registered with [config.Supports].
func Properties() []config.Property {
	return []config.Property{
		config.PropertyOf[string](ExporterKey),
		config.PropertyOf[string](ServiceNameKey),
		config.PropertyOf[string](OTLPTargetKey),
		config.PropertyOf[string](GCPProjectKey),
		config.PropertyOf[float64](SampleRatioKey),
	}
}

// Common holds the settings shared by every [Initializer].
type Common struct {
	ServiceName string

	// SampleRatio is the fraction of new traces which are sampled.
	// Spans with a sampled parent are always sampled.
	SampleRatio float64
}

func defaultCommon() Common {
	return Common{SampleRatio: 1}
}

// CommonOption configures any [Initializer].
type CommonOption interface {
	GoogleCloudOption
	LocalOption
	OTLPOption
}

type commonOptionFunc func(*Common)

func (f commonOptionFunc) ApplyGCP(cfg *GoogleCloudConfig) {
	f(&cfg.Common)
}

func (f commonOptionFunc) ApplyOTLP(cfg *OTLPConfig) {
	f(&cfg.Common)
}

func (f commonOptionFunc) ApplyLocal(cfg *LocalConfig) {
	f(&cfg.Common)
}

// ServiceName sets the service.name resource attribute.
func ServiceName(name string) CommonOption {
	return commonOptionFunc(func(c *Common) {
		c.ServiceName = name
	})
}

// SampleRatio sets the fraction of new traces which are sampled. The default is 1.
func SampleRatio(r float64) CommonOption {
	return commonOptionFunc(func(c *Common) {
		c.SampleRatio = r
	})
}

func (c Common) sampler() sdktrace.Sampler {
	switch {
	case c.SampleRatio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case c.SampleRatio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRatio))
	}
}

func (c Common) tracerProvider(ctx context.Context, exporter sdktrace.SpanExporter, opts ...resource.Option) (*sdktrace.TracerProvider, error) {
	opts = append(
		opts,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(c.ServiceName),
		),
	)
	res, err := resource.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(c.sampler()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return tp, nil
}

// Initializer creates a trace.TracerProvider.
type Initializer interface {
	Init(context.Context) (trace.TracerProvider, error)
}

// Noop leaves the global trace.TracerProvider untouched.
var Noop = noopConfiger{}

type noopConfiger struct{}

func (noopConfiger) Init(_ context.Context) (trace.TracerProvider, error) {
	return otel.GetTracerProvider(), nil
}

// UnknownExporterError is returned by [FromConfiguration] if
// [ExporterKey] names an exporter which isn't supported.
type UnknownExporterError struct {
	Name string
}

// Error implements the [builtin.error] interface.
func (e UnknownExporterError) Error() string {
	return fmt.Sprintf("unknown trace exporter: %s", e.Name)
}

// FromConfiguration selects an [Initializer] based on the value of [ExporterKey].
// Supported values are none, stdout, otlp and gcp. An unset exporter selects [Noop].
func FromConfiguration(cfg config.Configuration) (Initializer, error) {
	name, err := config.GetOr(cfg, ExporterKey, "none")
	if err != nil {
		return nil, err
	}
	serviceName, err := config.GetOr(cfg, ServiceNameKey, "")
	if err != nil {
		return nil, err
	}
	ratio, err := config.GetOr(cfg, SampleRatioKey, 1.0)
	if err != nil {
		return nil, err
	}
	common := []CommonOption{ServiceName(serviceName), SampleRatio(ratio)}

	switch strings.ToLower(name) {
	case "", "none":
		return Noop, nil
	case "stdout":
		return Local(localOptions(common)...), nil
	case "otlp":
		target, err := config.GetOr(cfg, OTLPTargetKey, "localhost:4317")
		if err != nil {
			return nil, err
		}
		return OTLP(append(otlpOptions(common), OTLPTarget(target))...), nil
	case "gcp":
		projectId, err := config.GetOr(cfg, GCPProjectKey, "")
		if err != nil {
			return nil, err
		}
		return GoogleCloud(append(gcpOptions(common), GoogleCloudProjectId(projectId))...), nil
	default:
		return nil, UnknownExporterError{Name: name}
	}
}

func localOptions(common []CommonOption) []LocalOption {
	opts := make([]LocalOption, len(common))
	for i, o := range common {
		opts[i] = o
	}
	return opts
}

func otlpOptions(common []CommonOption) []OTLPOption {
	opts := make([]OTLPOption, len(common))
	for i, o := range common {
		opts[i] = o
	}
	return opts
}

func gcpOptions(common []CommonOption) []GoogleCloudOption {
	opts := make([]GoogleCloudOption, len(common))
	for i, o := range common {
		opts[i] = o
	}
	return opts
}

// Install initializes a trace.TracerProvider, sets it as the global one
// and returns a func for shutting it down.
func Install(ctx context.Context, i Initializer) (func(context.Context) error, error) {
	if _, ok := i.(noopConfiger); ok {
		return func(context.Context) error { return nil }, nil
	}

	tp, err := i.Init(ctx)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)

	shutdowner, ok := tp.(interface{ Shutdown(context.Context) error })
	if !ok {
		return func(context.Context) error { return nil }, nil
	}
	return shutdowner.Shutdown, nil
}

// LocalConfig is the config for the stdout Initializer.
type LocalConfig struct {
	Common

	Out io.Writer
}

// LocalOption are options for the stdout Initializer.
type LocalOption interface {
	ApplyLocal(*LocalConfig)
}

type localOptionFunc func(*LocalConfig)

func (f localOptionFunc) ApplyLocal(cfg *LocalConfig) {
	f(cfg)
}

// LocalWriter sets where spans are written to. The default is os.Stdout.
func LocalWriter(w io.Writer) LocalOption {
	return localOptionFunc(func(lc *LocalConfig) {
		lc.Out = w
	})
}

// Local returns an Initializer which writes spans as JSON.
func Local(opts ...LocalOption) Initializer {
	cfg := LocalConfig{
		Common: defaultCommon(),
		Out:    os.Stdout,
	}
	for _, opt := range opts {
		opt.ApplyLocal(&cfg)
	}
	return cfg
}

// Init implements the [Initializer] interface.
func (cfg LocalConfig) Init(ctx context.Context) (trace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(cfg.Out),
	)
	if err != nil {
		return nil, err
	}

	tp, err := cfg.Common.tracerProvider(ctx, exporter)
	if err != nil {
		return nil, err
	}
	return tp, nil
}
