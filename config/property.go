// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"crypto/tls"
	"fmt"
	"reflect"
	"strings"
)

// KeyPrefix is shared by every well-known property name.
const KeyPrefix = "jakarta.ws.rs.SeBootstrap"

// Well-known property names. Every provider recognizes them.
const (
	ProtocolKey                = KeyPrefix + ".Protocol"
	HostKey                    = KeyPrefix + ".Host"
	PortKey                    = KeyPrefix + ".Port"
	RootPathKey                = KeyPrefix + ".RootPath"
	SSLContextKey              = KeyPrefix + ".SSLContext"
	SSLClientAuthenticationKey = KeyPrefix + ".SSLClientAuthentication"
)

// Defaults and sentinels of the well-known properties.
const (
	DefaultProtocol = "HTTP"
	DefaultHost     = "localhost"
	DefaultRootPath = "/"

	// DefaultPort tells the provider to use its own default port.
	DefaultPort = -1

	// FreePort tells the provider to bind any free port.
	FreePort = 0
)

// Property describes a named property and the Go type of its value.
type Property struct {
	Name string
	Type reflect.Type
}

// PropertyOf returns a [Property] whose values are of type T.
func PropertyOf[T any](name string) Property {
	return Property{
		Name: name,
		Type: reflect.TypeFor[T](),
	}
}

// WellKnownProperties returns the properties every provider must recognize.
func WellKnownProperties() []Property {
	return []Property{
		PropertyOf[string](ProtocolKey),
		PropertyOf[string](HostKey),
		PropertyOf[int](PortKey),
		PropertyOf[string](RootPathKey),
		PropertyOf[*tls.Config](SSLContextKey),
		PropertyOf[ClientAuth](SSLClientAuthenticationKey),
	}
}

// DefaultSSLContext returns the TLS settings used when no sslContext is set.
// A zero tls.Config defers every choice to the crypto/tls defaults.
func DefaultSSLContext() *tls.Config {
	return &tls.Config{}
}

// ClientAuth is the TLS client authentication policy.
type ClientAuth int

const (
	// ClientAuthNone does not request a client certificate.
	ClientAuthNone ClientAuth = iota

	// ClientAuthOptional requests a client certificate and verifies it if one is sent.
	ClientAuthOptional

	// ClientAuthMandatory requires a valid client certificate.
	ClientAuthMandatory
)

var clientAuthNames = [...]string{
	ClientAuthNone:      "NONE",
	ClientAuthOptional:  "OPTIONAL",
	ClientAuthMandatory: "MANDATORY",
}

// String implements the [fmt.Stringer] interface.
func (ca ClientAuth) String() string {
	if ca < 0 || int(ca) >= len(clientAuthNames) {
		return fmt.Sprintf("ClientAuth(%d)", int(ca))
	}
	return clientAuthNames[ca]
}

// MarshalText implements the [encoding.TextMarshaler] interface.
func (ca ClientAuth) MarshalText() ([]byte, error) {
	if ca < 0 || int(ca) >= len(clientAuthNames) {
		return nil, UnknownClientAuthError{Value: ca.String()}
	}
	return []byte(clientAuthNames[ca]), nil
}

// UnknownClientAuthError is returned when parsing a client authentication policy
// name which isn't NONE, OPTIONAL or MANDATORY.
type UnknownClientAuthError struct {
	Value string
}

// Error implements the error interface.
func (e UnknownClientAuthError) Error() string {
	return fmt.Sprintf("unknown ssl client authentication policy: %q", e.Value)
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
// Names are matched case insensitively.
func (ca *ClientAuth) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	for i, name := range clientAuthNames {
		if strings.EqualFold(name, s) {
			*ca = ClientAuth(i)
			return nil
		}
	}
	return UnknownClientAuthError{Value: s}
}
