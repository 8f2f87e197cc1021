// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httperror

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/z5labs/bootstrap/internal/try"
)

// Mapper maps an error to the [Error] reported to the client. It reports
// false if it doesn't know how to map the error.
type Mapper interface {
	MapError(error) (*Error, bool)
}

// MapperFunc is a func implementation of the [Mapper] interface.
type MapperFunc func(error) (*Error, bool)

// MapError implements the [Mapper] interface.
func (f MapperFunc) MapError(err error) (*Error, bool) {
	return f(err)
}

// MapTo returns a [Mapper] which maps every error matching target,
// as determined by [errors.Is], to status.
func MapTo(target error, status int) Mapper {
	return MapperFunc(func(err error) (*Error, bool) {
		if !errors.Is(err, target) {
			return nil, false
		}
		return Wrap(err, status), true
	})
}

type mappersKey struct{}

// WithMappers returns a copy of ctx carrying mappers in addition
// to any mappers already carried by ctx.
func WithMappers(ctx context.Context, mappers ...Mapper) context.Context {
	if len(mappers) == 0 {
		return ctx
	}
	existing := MappersFromContext(ctx)
	all := make([]Mapper, 0, len(existing)+len(mappers))
	all = append(all, existing...)
	all = append(all, mappers...)
	return context.WithValue(ctx, mappersKey{}, all)
}

// MappersFromContext returns the mappers carried by ctx.
func MappersFromContext(ctx context.Context) []Mapper {
	mappers, _ := ctx.Value(mappersKey{}).([]Mapper)
	return mappers
}

// Resolve maps err to an [Error]. The mappers are consulted in order and
// the first match wins. Without a match, an [Error] within the chain of err
// is used and anything else becomes a 500.
func Resolve(err error, mappers ...Mapper) *Error {
	for _, m := range mappers {
		if e, ok := m.MapError(err); ok && e != nil {
			return e
		}
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, http.StatusInternalServerError)
}

// WriteError writes e as a JSON response.
func WriteError(w http.ResponseWriter, e *Error) {
	if e.Location != "" {
		w.Header().Set("Location", e.Location)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(e.Status)

	json.NewEncoder(w).Encode(e)
}

// FromResponse reads an [Error] from a response with a non 2xx status.
// The message is taken from a JSON body written by [WriteError] or,
// failing that, the raw body.
func FromResponse(resp *http.Response) *Error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	e := &Error{
		Status:   resp.StatusCode,
		Location: resp.Header.Get("Location"),
	}

	var body Error
	if json.Unmarshal(b, &body) == nil && body.Message != "" {
		e.Message = body.Message
		return e
	}
	e.Message = string(b)
	return e
}

// HandlerFunc is a http.Handler which may fail. Failures are resolved
// with the mappers carried by the request context, see [WithMappers].
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// ServeHTTP implements the http.Handler interface.
func (f HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := f(w, r)
	if err == nil {
		return
	}
	WriteError(w, Resolve(err, MappersFromContext(r.Context())...))
}

// Recover turns panics within h into 500 responses.
func Recover(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := serve(h, w, r)
		if err == nil {
			return
		}
		if errors.Is(err, http.ErrAbortHandler) {
			panic(http.ErrAbortHandler)
		}
		WriteError(w, Resolve(err, MappersFromContext(r.Context())...))
	})
}

func serve(h http.Handler, w http.ResponseWriter, r *http.Request) (err error) {
	defer try.Recover(&err)

	h.ServeHTTP(w, r)
	return nil
}
