// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config provides the bootstrap [Configuration], an immutable bag of named
// properties, and the [Builder] used to assemble one.
//
// # Well-known properties
//
// Every provider recognizes the following property names. Reading a property which
// was never set returns its documented default.
//
//	jakarta.ws.rs.SeBootstrap.Protocol                "HTTP"       "HTTP" or "HTTPS"
//	jakarta.ws.rs.SeBootstrap.Host                    "localhost"  "0.0.0.0", "::", "*" or "" bind all interfaces
//	jakarta.ws.rs.SeBootstrap.Port                    -1           -1 is the provider default, 0 picks a free port
//	jakarta.ws.rs.SeBootstrap.RootPath                "/"
//	jakarta.ws.rs.SeBootstrap.SSLContext              *tls.Config  platform default TLS settings
//	jakarta.ws.rs.SeBootstrap.SSLClientAuthentication NONE         NONE, OPTIONAL or MANDATORY
//
// Sources match these names case insensitively, so nested documents work too:
//
//	jakarta.ws.rs.SeBootstrap:
//	  Port: 8080
//
// Any other property name is accepted and carried along untouched so that
// providers can define their own extensions.
//
// # Building
//
//	cfg, err := config.NewBuilder().
//	    Protocol("HTTPS").
//	    Port(0).
//	    SSLClientAuthentication(config.ClientAuthMandatory).
//	    Build()
//
// Values can also be bulk loaded with [Builder.From], from bedrock style sources
// ([Map], [FromYaml], [FromJson], [FromEnv]) with [Builder.FromSource], or from a
// *viper.Viper with [Builder.FromExternal].
//
// # Typed access
//
// The typed accessors, e.g. [Configuration.Port], are a thin view over the
// underlying untyped bag. They never fail because a property is missing but they
// do return a [TypeMismatchError] if the stored value has an unexpected type.
package config
