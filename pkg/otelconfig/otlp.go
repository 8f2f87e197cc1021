// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelconfig

import (
	"context"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// OTLPConfig is the config for the OTLP Initializer.
type OTLPConfig struct {
	Common

	// Target is the gRPC target of the collector, e.g. localhost:4317.
	Target string
}

// OTLPOption are options for the OTLP Initializer.
type OTLPOption interface {
	ApplyOTLP(*OTLPConfig)
}

type otlpOptionFunc func(*OTLPConfig)

func (f otlpOptionFunc) ApplyOTLP(cfg *OTLPConfig) {
	f(cfg)
}

// OTLPTarget sets the gRPC target of the collector.
func OTLPTarget(target string) OTLPOption {
	return otlpOptionFunc(func(oc *OTLPConfig) {
		oc.Target = target
	})
}

// OTLP returns an Initializer which exports spans to an OTLP collector over gRPC.
func OTLP(opts ...OTLPOption) Initializer {
	c := OTLPConfig{
		Common: defaultCommon(),
	}
	for _, opt := range opts {
		opt.ApplyOTLP(&c)
	}
	return c
}

// Init implements the [Initializer] interface. The connection to the
// collector is established lazily so a collector which isn't up yet
// doesn't prevent the server from starting.
func (cfg OTLPConfig) Init(ctx context.Context) (trace.TracerProvider, error) {
	conn, err := grpc.DialContext(
		ctx,
		cfg.Target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		conn.Close()
		return nil, err
	}

	tp, err := cfg.Common.tracerProvider(ctx, exporter)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return tp, nil
}
