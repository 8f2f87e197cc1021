// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"crypto/tls"
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// Configuration is an immutable set of named properties describing how a
// server instance should be bootstrapped. The zero value is an empty
// Configuration where every well-known property resolves to its default.
//
// A Configuration is safe for concurrent use.
type Configuration struct {
	props map[string]any
}

// Property returns the raw value stored for name or nil if it isn't set.
func (c Configuration) Property(name string) any {
	return c.props[name]
}

// HasProperty reports whether a value is stored for name.
func (c Configuration) HasProperty(name string) bool {
	return c.Property(name) != nil
}

// Names returns the sorted names of all set properties.
func (c Configuration) Names() []string {
	names := make([]string, 0, len(c.props))
	for name := range c.props {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Properties returns a copy of all set properties.
func (c Configuration) Properties() map[string]any {
	if c.props == nil {
		return map[string]any{}
	}
	return maps.Clone(c.props)
}

// Protocol returns the value of [ProtocolKey].
func (c Configuration) Protocol() (string, error) {
	return GetOr(c, ProtocolKey, DefaultProtocol)
}

// Host returns the value of [HostKey].
func (c Configuration) Host() (string, error) {
	return GetOr(c, HostKey, DefaultHost)
}

// Port returns the value of [PortKey].
func (c Configuration) Port() (int, error) {
	return GetOr(c, PortKey, DefaultPort)
}

// RootPath returns the value of [RootPathKey].
func (c Configuration) RootPath() (string, error) {
	return GetOr(c, RootPathKey, DefaultRootPath)
}

// SSLContext returns the value of [SSLContextKey]. If unset, a fresh
// [DefaultSSLContext] is returned.
func (c Configuration) SSLContext() (*tls.Config, error) {
	tc, ok, err := Get[*tls.Config](c, SSLContextKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return DefaultSSLContext(), nil
	}
	return tc, nil
}

// SSLClientAuthentication returns the value of [SSLClientAuthenticationKey].
func (c Configuration) SSLClientAuthentication() (ClientAuth, error) {
	return GetOr(c, SSLClientAuthenticationKey, ClientAuthNone)
}

// TypeMismatchError is returned when a property is read as a type
// which differs from the type of its stored value.
type TypeMismatchError struct {
	Key      string
	Expected reflect.Type
	Actual   reflect.Type
}

// Error implements the error interface.
func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("config property %s holds a value of type %s, not %s", e.Key, e.Actual, e.Expected)
}

// Get reads the property name as a T. The returned bool is false
// if the property isn't set.
func Get[T any](c Configuration, name string) (T, bool, error) {
	var zero T
	v := c.Property(name)
	if v == nil {
		return zero, false, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, false, TypeMismatchError{
			Key:      name,
			Expected: reflect.TypeFor[T](),
			Actual:   reflect.TypeOf(v),
		}
	}
	return t, true, nil
}

// GetOr reads the property name as a T or returns def if it isn't set.
func GetOr[T any](c Configuration, name string, def T) (T, error) {
	t, ok, err := Get[T](c, name)
	if err != nil {
		return t, err
	}
	if !ok {
		return def, nil
	}
	return t, nil
}
