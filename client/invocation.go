// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/z5labs/bootstrap"
	"github.com/z5labs/bootstrap/config"
	"github.com/z5labs/bootstrap/httperror"

	"go.uber.org/zap"
)

// Target is a resource URL requests can be sent to. A Target is
// immutable, every method returns a new Target.
type Target struct {
	c   *Client
	u   *url.URL
	err error
}

// Target returns a [Target] for baseURL. An invalid URL is reported
// when a request is sent.
func (c *Client) Target(baseURL string) *Target {
	u, err := url.Parse(baseURL)
	return &Target{c: c, u: u, err: err}
}

// ForInstance returns a [Target] for the root path of a running instance.
func (c *Client) ForInstance(inst bootstrap.Instance) *Target {
	baseURL, err := BaseURL(inst.Configuration())
	if err != nil {
		return &Target{c: c, err: err}
	}
	return c.Target(baseURL)
}

// BaseURL derives the URL of the root path described by cfg. Wildcard
// hosts are replaced with localhost.
func BaseURL(cfg config.Configuration) (string, error) {
	protocol, err := cfg.Protocol()
	if err != nil {
		return "", err
	}
	host, err := cfg.Host()
	if err != nil {
		return "", err
	}
	port, err := cfg.Port()
	if err != nil {
		return "", err
	}
	rootPath, err := cfg.RootPath()
	if err != nil {
		return "", err
	}

	switch strings.Trim(host, "[]") {
	case "", "*", "0.0.0.0", "::":
		host = "localhost"
	}
	host = strings.Trim(host, "[]")
	if port >= 0 {
		host = net.JoinHostPort(host, strconv.Itoa(port))
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	u := url.URL{
		Scheme: strings.ToLower(protocol),
		Host:   host,
		Path:   "/" + strings.Trim(rootPath, "/"),
	}
	return u.String(), nil
}

func (t *Target) clone() *Target {
	if t.err != nil {
		return t
	}
	u := *t.u
	return &Target{c: t.c, u: &u}
}

// Path appends the given path segments to the URL of t.
func (t *Target) Path(segments ...string) *Target {
	nt := t.clone()
	if nt.err != nil {
		return nt
	}
	nt.u = nt.u.JoinPath(segments...)
	return nt
}

// QueryParam appends values to the query parameter name.
func (t *Target) QueryParam(name string, values ...string) *Target {
	nt := t.clone()
	if nt.err != nil {
		return nt
	}
	q := nt.u.Query()
	for _, v := range values {
		q.Add(name, v)
	}
	nt.u.RawQuery = q.Encode()
	return nt
}

// URL returns the URL of t.
func (t *Target) URL() (*url.URL, error) {
	if t.err != nil {
		return nil, t.err
	}
	u := *t.u
	return &u, nil
}

// Request starts building a request to t which accepts the given media types.
func (t *Target) Request(accept ...string) *Invocation {
	inv := &Invocation{
		t:      t.clone(),
		header: make(http.Header),
	}
	if len(accept) > 0 {
		inv.header.Set("Accept", strings.Join(accept, ", "))
	}
	return inv
}

// Invocation is a request which is ready to be sent.
type Invocation struct {
	t      *Target
	header http.Header
}

// Header adds value to the request header name.
func (inv *Invocation) Header(name, value string) *Invocation {
	inv.header.Add(name, value)
	return inv
}

// Get sends a GET request.
func (inv *Invocation) Get(ctx context.Context) (*http.Response, error) {
	return inv.Method(ctx, http.MethodGet, nil)
}

// Delete sends a DELETE request.
func (inv *Invocation) Delete(ctx context.Context) (*http.Response, error) {
	return inv.Method(ctx, http.MethodDelete, nil)
}

// Post sends a POST request with the given body.
func (inv *Invocation) Post(ctx context.Context, contentType string, body io.Reader) (*http.Response, error) {
	return inv.withContentType(contentType).Method(ctx, http.MethodPost, body)
}

// Put sends a PUT request with the given body.
func (inv *Invocation) Put(ctx context.Context, contentType string, body io.Reader) (*http.Response, error) {
	return inv.withContentType(contentType).Method(ctx, http.MethodPut, body)
}

func (inv *Invocation) withContentType(contentType string) *Invocation {
	if contentType != "" {
		inv.header.Set("Content-Type", contentType)
	}
	return inv
}

// Method sends a request with an arbitrary method.
func (inv *Invocation) Method(ctx context.Context, method string, body io.Reader) (*http.Response, error) {
	u, err := inv.t.URL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	for name, values := range inv.header {
		req.Header[name] = append([]string(nil), values...)
	}

	log := inv.t.c.log
	log.Debug("sending http request", zap.String("method", method), zap.String("url", u.String()))
	resp, err := inv.t.c.hc.Do(req)
	if err != nil {
		log.Error("http request failed", zap.String("method", method), zap.String("url", u.String()), zap.Error(err))
		return nil, err
	}
	log.Debug("received http response", zap.String("url", u.String()), zap.Int("http_status_code", resp.StatusCode))
	return resp, nil
}

// Into sends a GET request and decodes the response entity into v.
func (inv *Invocation) Into(ctx context.Context, v any) error {
	if inv.header.Get("Accept") == "" {
		inv.header.Set("Accept", "application/json")
	}
	resp, err := inv.Get(ctx)
	if err != nil {
		return err
	}
	return readEntity(resp, v)
}

// UnsupportedEntityError is returned by [ReadEntity] if the response
// entity could not be decoded.
type UnsupportedEntityError struct {
	ContentType string
	Cause       error
}

// Error implements the [builtin.error] interface.
func (e UnsupportedEntityError) Error() string {
	return fmt.Sprintf("failed to read response entity of type %q: %s", e.ContentType, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e UnsupportedEntityError) Unwrap() error {
	return e.Cause
}

// ReadEntity reads the entity of resp as a T and closes the body.
// A string or []byte T receives the raw body, anything else is JSON
// decoded. A non 2xx response is returned as an *[httperror.Error].
func ReadEntity[T any](resp *http.Response) (T, error) {
	var v T
	err := readEntity(resp, &v)
	return v, err
}

func readEntity(resp *http.Response, v any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httperror.FromResponse(resp)
	}

	switch x := v.(type) {
	case *string:
		b, err := io.ReadAll(resp.Body)
		*x = string(b)
		return err
	case *[]byte:
		b, err := io.ReadAll(resp.Body)
		*x = b
		return err
	}

	err := json.NewDecoder(resp.Body).Decode(v)
	if err != nil {
		return UnsupportedEntityError{
			ContentType: resp.Header.Get("Content-Type"),
			Cause:       err,
		}
	}
	return nil
}
