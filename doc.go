// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package bootstrap starts and stops HTTP applications through a pluggable [Provider].
//
// The package is built around a handful of small abstractions:
//
//   - [Application]: describes the resources, singletons and properties to be served
//   - [config.Configuration]: an immutable set of properties describing how to serve it
//   - [Provider]: the implementation which actually binds a listener and serves requests
//   - [Instance]: a handle to a running server, returned asynchronously by [Start]
//
// # Basic Usage
//
// Build a configuration with the builder of the provider you intend to use:
//
//	p := http.NewProvider()
//	cfg, err := bootstrap.ConfigurationBuilder(p).
//	    Protocol("HTTP").
//	    Port(8080).
//	    Build()
//
// Describe the application and start it:
//
//	app := bootstrap.NewApplication(
//	    bootstrap.WithResource(bootstrap.HandleFunc("/hello", hello)),
//	)
//
//	inst, err := bootstrap.Start(ctx, p, app, cfg).Await(ctx)
//
// Stop it when the process is asked to shut down:
//
//	<-bootstrap.StopOnShutdown(ctx, inst, func(res bootstrap.StopResult, err error) {
//	    log.Println("stopped", err)
//	})
package bootstrap
