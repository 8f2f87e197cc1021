// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"net/http"
	"path"
	"strings"

	"github.com/z5labs/bootstrap"
	"github.com/z5labs/bootstrap/httperror"
	"github.com/z5labs/bootstrap/internal/try"
	"github.com/z5labs/bootstrap/pkg/health"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func (p *Provider) handler(app bootstrap.Application, rootPath string, inst *Instance) (http.Handler, error) {
	mux := http.NewServeMux()

	var mappers []httperror.Mapper
	resources := app.Resources()
	for _, v := range app.Singletons() {
		if m, ok := v.(httperror.Mapper); ok {
			mappers = append(mappers, m)
		}
		if r, ok := v.(bootstrap.Resource); ok {
			resources = append(resources, r)
		}
	}

	for _, r := range resources {
		err := registerEndpoint(mux, mountPattern(rootPath, r.Pattern()), r)
		if err != nil {
			return nil, err
		}
	}

	if p.healthEndpoints {
		endpoints := map[string]health.Metric{
			"/health/startup":   health.MetricFunc(inst.started),
			"/health/liveness":  health.And(health.MetricFunc(inst.alive), health.Within(p.healthTimeout, health.And(p.liveness...))),
			"/health/readiness": health.And(health.MetricFunc(inst.ready), health.Within(p.healthTimeout, health.And(p.readiness...))),
		}
		for pattern, m := range endpoints {
			err := registerEndpoint(mux, pattern, health.Handler(m))
			if err != nil {
				return nil, err
			}
		}
	}

	h := httperror.Recover(mux)
	if len(mappers) > 0 {
		h = withMappers(h, mappers)
	}

	return otelhttp.NewHandler(
		h,
		"server",
		otelhttp.WithMessageEvents(otelhttp.ReadEvents, otelhttp.WriteEvents),
	), nil
}

func withMappers(h http.Handler, mappers []httperror.Mapper) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := httperror.WithMappers(r.Context(), mappers...)
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// mountPattern prefixes the path of pattern with rootPath. A method
// or host within pattern, e.g. "GET /users/{id}", is preserved.
func mountPattern(rootPath, pattern string) string {
	method, p, found := strings.Cut(pattern, " ")
	if !found {
		method, p = "", pattern
	}
	p = strings.TrimLeft(p, " ")

	host := ""
	if i := strings.Index(p, "/"); i > 0 {
		host, p = p[:i], p[i:]
	}

	trailingSlash := strings.HasSuffix(p, "/")
	mounted := path.Join("/", rootPath, p)
	if trailingSlash && mounted != "/" {
		mounted += "/"
	}

	if method == "" {
		return host + mounted
	}
	return method + " " + host + mounted
}

func registerEndpoint(mux *http.ServeMux, pattern string, h http.Handler) (err error) {
	defer func() {
		if err != nil {
			err = RouteError{Pattern: pattern, Cause: err}
		}
	}()
	defer try.Recover(&err)

	mux.Handle(
		pattern,
		otelhttp.WithRouteTag(pattern, h),
	)
	return nil
}
