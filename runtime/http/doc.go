// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package http provides a [bootstrap.Provider] which serves applications
// with the standard library HTTP server.
//
// # Configuration
//
// Besides the well-known properties of the config package, the provider
// recognizes the following properties:
//
//   - http.readTimeout: maximum duration for reading an entire request
//   - http.readHeaderTimeout: maximum duration for reading request headers
//   - http.writeTimeout: maximum duration before timing out response writes
//   - http.idleTimeout: maximum duration to wait for the next keep-alive request
//   - http.shutdownTimeout: maximum duration of a graceful stop
//   - http.maxHeaderBytes: maximum size of the request headers
//
// Property values take precedence over the corresponding [Option]s.
//
// # Addresses
//
// The host localhost binds the loopback interface and the hosts "", "*",
// "0.0.0.0" and "::" bind all interfaces. A port of -1 selects the default port
// of the protocol, 80 for HTTP and 443 for HTTPS, and a port of 0 selects a
// free port. The actual port is reported by the configuration of the [Instance].
//
// # Health
//
// Unless disabled with [HealthEndpoints], the following endpoints reflect
// the state of the [Instance]:
//
//   - /health/startup: healthy once the instance is running
//   - /health/liveness: healthy while the instance is running or stopping
//   - /health/readiness: healthy while the instance is running
//
// # Basic Usage
//
//	p := http.NewProvider(http.LogHandler(slog.Default().Handler()))
//
//	cfg, err := p.NewConfigurationBuilder().
//	    Host("0.0.0.0").
//	    Port(8080).
//	    Property(http.ShutdownTimeoutKey, 30*time.Second).
//	    Build()
//
//	inst, err := bootstrap.Start(ctx, p, app, cfg).Await(ctx)
package http
