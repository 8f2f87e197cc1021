// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"strings"

	"github.com/z5labs/bootstrap/config/key"

	"github.com/spf13/viper"
)

// Builder accumulates properties and produces a [Configuration].
// A Builder is not safe for concurrent use.
type Builder struct {
	supported []Property
	props     map[string]any
	errs      []error
}

// BuilderOption configures a [Builder].
type BuilderOption func(*Builder)

// Supports registers additional properties the [Builder] recognizes.
// Recognized properties are queried by [Builder.From] and [Builder.FromExternal]
// and have their values coerced to the declared type when loaded from a [Source].
func Supports(props ...Property) BuilderOption {
	return func(b *Builder) {
		for _, p := range props {
			if i := b.indexOf(p.Name); i >= 0 {
				b.supported[i] = p
				continue
			}
			b.supported = append(b.supported, p)
		}
	}
}

// NewBuilder returns a [Builder] which recognizes the [WellKnownProperties].
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		supported: WellKnownProperties(),
		props:     make(map[string]any),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SupportedProperties returns the properties recognized by b.
func (b *Builder) SupportedProperties() []Property {
	return append([]Property(nil), b.supported...)
}

// Property sets the property name to value. A nil value removes any
// previously set value so the property reverts to its default.
func (b *Builder) Property(name string, value any) *Builder {
	if isNil(value) {
		delete(b.props, name)
		return b
	}
	if b.props == nil {
		b.props = make(map[string]any)
	}
	b.props[name] = value
	return b
}

// Protocol sets [ProtocolKey].
func (b *Builder) Protocol(protocol string) *Builder {
	return b.Property(ProtocolKey, protocol)
}

// Host sets [HostKey].
func (b *Builder) Host(host string) *Builder {
	return b.Property(HostKey, host)
}

// Port sets [PortKey].
func (b *Builder) Port(port int) *Builder {
	return b.Property(PortKey, port)
}

// RootPath sets [RootPathKey].
func (b *Builder) RootPath(rootPath string) *Builder {
	return b.Property(RootPathKey, rootPath)
}

// SSLContext sets [SSLContextKey]. A nil tls.Config reverts to the default.
func (b *Builder) SSLContext(tc *tls.Config) *Builder {
	return b.Property(SSLContextKey, tc)
}

// SSLClientAuthentication sets [SSLClientAuthenticationKey].
func (b *Builder) SSLClientAuthentication(ca ClientAuth) *Builder {
	return b.Property(SSLClientAuthenticationKey, ca)
}

// RetrievalFunc looks up the value of the named property. It reports
// false if it has no value for the property.
type RetrievalFunc func(name string, typ reflect.Type) (any, bool)

// InvalidRetrievalError is recorded when a [RetrievalFunc] reports a
// value as present but returns nil.
type InvalidRetrievalError struct {
	Key string
}

// Error implements the error interface.
func (e InvalidRetrievalError) Error() string {
	return fmt.Sprintf("retrieval function reported a nil value as present for property: %s", e.Key)
}

// From queries f for every supported property before returning. Values
// whose type doesn't match the property type are ignored.
func (b *Builder) From(f RetrievalFunc) *Builder {
	for _, p := range b.supported {
		v, ok := f(p.Name, p.Type)
		if !ok {
			continue
		}
		if isNil(v) {
			b.errs = append(b.errs, InvalidRetrievalError{Key: p.Name})
			continue
		}
		if !reflect.TypeOf(v).AssignableTo(p.Type) {
			continue
		}
		b.Property(p.Name, v)
	}
	return b
}

// FromSource applies src to b. Values of supported properties are coerced
// to their declared type, e.g. "8443" becomes the int 8443 for [PortKey].
// Any error is returned by [Builder.Build].
func (b *Builder) FromSource(src Source) *Builder {
	err := src.Apply(b)
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// FromExternal loads supported properties from a provider specific
// configuration object. Currently *viper.Viper and [Source] are
// recognized. Anything else is ignored.
func (b *Builder) FromExternal(v any) *Builder {
	switch x := v.(type) {
	case *viper.Viper:
		return b.fromViper(x)
	case Source:
		return b.FromSource(x)
	default:
		return b
	}
}

func (b *Builder) fromViper(v *viper.Viper) *Builder {
	for _, p := range b.supported {
		if !v.IsSet(p.Name) {
			continue
		}
		err := b.Set(key.Name(p.Name), v.Get(p.Name))
		if err != nil {
			b.errs = append(b.errs, err)
		}
	}
	return b
}

// Merge copies every property of cfg into b, overriding existing values.
func (b *Builder) Merge(cfg Configuration) *Builder {
	for name, v := range cfg.props {
		b.Property(name, v)
	}
	return b
}

// CoercionError occurs when a loaded value can't be converted to
// the type of the property it's being assigned to.
type CoercionError struct {
	Key   string
	Type  reflect.Type
	Cause error
}

// Error implements the error interface.
func (e CoercionError) Error() string {
	return fmt.Sprintf("failed to coerce value of config property %s to %s: %s", e.Key, e.Type, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e CoercionError) Unwrap() error {
	return e.Cause
}

// Set implements the [Store] interface. Property names are matched
// against the supported properties case insensitively.
func (b *Builder) Set(k key.Keyer, v any) error {
	name := k.Key()
	i := b.indexOfFold(name)
	if i < 0 {
		b.Property(name, v)
		return nil
	}

	p := b.supported[i]
	cv, err := coerce(v, p.Type)
	if err != nil {
		return CoercionError{
			Key:   p.Name,
			Type:  p.Type,
			Cause: err,
		}
	}
	b.Property(p.Name, cv)
	return nil
}

// Build returns a snapshot of the current properties. Changes made
// to b afterwards are not visible through the returned [Configuration].
func (b *Builder) Build() (Configuration, error) {
	if len(b.errs) > 0 {
		return Configuration{}, errors.Join(b.errs...)
	}
	return Configuration{props: maps.Clone(b.props)}, nil
}

func (b *Builder) indexOf(name string) int {
	for i, p := range b.supported {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func (b *Builder) indexOfFold(name string) int {
	if i := b.indexOf(name); i >= 0 {
		return i
	}
	for i, p := range b.supported {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
