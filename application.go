// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bootstrap

import (
	"maps"
	"net/http"
	"slices"
)

// Resource is a http.Handler which knows the path pattern it should be served under.
// Patterns are relative to the root path of the [config.Configuration].
type Resource interface {
	http.Handler

	Pattern() string
}

type resource struct {
	http.Handler
	pattern string
}

func (r resource) Pattern() string {
	return r.pattern
}

// Handle returns a [Resource] which serves h under pattern.
func Handle(pattern string, h http.Handler) Resource {
	return resource{
		Handler: h,
		pattern: pattern,
	}
}

// HandleFunc returns a [Resource] which serves f under pattern.
func HandleFunc(pattern string, f func(http.ResponseWriter, *http.Request)) Resource {
	return Handle(pattern, http.HandlerFunc(f))
}

// Application describes what a [Provider] should serve.
type Application interface {
	// Resources returns the resources to be mounted.
	Resources() []Resource

	// Singletons returns provider components, e.g. error mappers.
	// Singletons which are also a [Resource] are mounted as well.
	Singletons() []any

	// Properties returns application specific configuration properties.
	Properties() map[string]any
}

// ApplicationOption configures a [BaseApplication].
type ApplicationOption func(*BaseApplication)

// WithResource adds resources to the [Application].
func WithResource(rs ...Resource) ApplicationOption {
	return func(ba *BaseApplication) {
		ba.resources = append(ba.resources, rs...)
	}
}

// WithSingleton adds singletons to the [Application].
func WithSingleton(vs ...any) ApplicationOption {
	return func(ba *BaseApplication) {
		ba.singletons = append(ba.singletons, vs...)
	}
}

// WithProperty sets an application property.
func WithProperty(name string, value any) ApplicationOption {
	return func(ba *BaseApplication) {
		if ba.props == nil {
			ba.props = make(map[string]any)
		}
		ba.props[name] = value
	}
}

// BaseApplication is an [Application]. The zero value describes an empty
// application, which makes it useful for embedding into custom
// [Application] implementations that only override some methods.
type BaseApplication struct {
	resources  []Resource
	singletons []any
	props      map[string]any
}

// NewApplication returns an [Application] configured by the given options.
func NewApplication(opts ...ApplicationOption) *BaseApplication {
	ba := &BaseApplication{}
	for _, opt := range opts {
		opt(ba)
	}
	return ba
}

// Resources implements the [Application] interface.
func (ba *BaseApplication) Resources() []Resource {
	return slices.Clone(ba.resources)
}

// Singletons implements the [Application] interface.
func (ba *BaseApplication) Singletons() []any {
	return slices.Clone(ba.singletons)
}

// Properties implements the [Application] interface.
func (ba *BaseApplication) Properties() map[string]any {
	if ba.props == nil {
		return map[string]any{}
	}
	return maps.Clone(ba.props)
}
