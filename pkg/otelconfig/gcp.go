// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelconfig

import (
	"context"

	texporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"go.opentelemetry.io/contrib/detectors/gcp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
)

// GoogleCloudConfig is the config for the Google Cloud Initializer.
type GoogleCloudConfig struct {
	Common

	// ProjectId is the project traces are exported to. If empty, the
	// project is detected from the credentials.
	ProjectId string
}

// GoogleCloudOption are options for the Google Cloud Initializer.
type GoogleCloudOption interface {
	ApplyGCP(*GoogleCloudConfig)
}

type gcpOptionFunc func(*GoogleCloudConfig)

func (f gcpOptionFunc) ApplyGCP(cfg *GoogleCloudConfig) {
	f(cfg)
}

// GoogleCloudProjectId configures the Google Cloud Project ID.
func GoogleCloudProjectId(id string) GoogleCloudOption {
	return gcpOptionFunc(func(gcc *GoogleCloudConfig) {
		gcc.ProjectId = id
	})
}

// GoogleCloud returns an Initializer for exporting traces directly to Cloud Trace.
func GoogleCloud(opts ...GoogleCloudOption) Initializer {
	gc := GoogleCloudConfig{
		Common: defaultCommon(),
	}
	for _, opt := range opts {
		opt.ApplyGCP(&gc)
	}
	return gc
}

// Init implements the [Initializer] interface. The resource is
// detected from the environment the server is running in.
func (cfg GoogleCloudConfig) Init(ctx context.Context) (trace.TracerProvider, error) {
	exporterOpts := []texporter.Option{
		texporter.WithTraceClientOptions([]option.ClientOption{option.WithTelemetryDisabled()}),
	}
	if cfg.ProjectId != "" {
		exporterOpts = append(exporterOpts, texporter.WithProjectID(cfg.ProjectId))
	}

	exporter, err := texporter.New(exporterOpts...)
	if err != nil {
		return nil, err
	}

	tp, err := cfg.Common.tracerProvider(ctx, exporter, resource.WithDetectors(gcp.NewDetector()))
	if err != nil {
		return nil, err
	}
	return tp, nil
}
