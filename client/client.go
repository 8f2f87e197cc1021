// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package client provides a builder for outbound requests on top of
// a production ready http.Client.
package client

import (
	"crypto/tls"
	"errors"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type options struct {
	name      string
	logger    *zap.Logger
	timeout   time.Duration
	transport http.RoundTripper
	tlsConfig *tls.Config

	maxRetries int
	minWait    time.Duration
	maxWait    time.Duration

	tripAfter    uint32
	openTimeout  time.Duration
	halfOpenReqs uint32
	tripOn       []int
}

// Option configures a [Client].
type Option func(*options)

// Name names the client. The name is used for the circuit breaker and the logger.
func Name(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// Logger sets the logger for retry attempts and circuit breaker state changes.
func Logger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Timeout bounds each request, including retries. Zero means no timeout.
func Timeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// Transport sets the base http.RoundTripper. The default is http.DefaultTransport.
func Transport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// TLSConfig sets the TLS configuration used when connecting to HTTPS targets.
// It's ignored if the base [Transport] isn't an *http.Transport.
func TLSConfig(tc *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = tc
	}
}

// MaxRetries is the number of times a request is retried after a
// connection error or a 5xx response. The default is 2.
func MaxRetries(n int) Option {
	return func(o *options) {
		o.maxRetries = n
	}
}

// MinWait is the minimum backoff between retries. The default is 100ms.
func MinWait(d time.Duration) Option {
	return func(o *options) {
		o.minWait = d
	}
}

// MaxWait is the maximum backoff between retries. The default is 5s.
func MaxWait(d time.Duration) Option {
	return func(o *options) {
		o.maxWait = d
	}
}

// TripAfter is the number of consecutive failures which open the
// circuit. Zero disables the circuit breaker. The default is 5.
func TripAfter(n uint32) Option {
	return func(o *options) {
		o.tripAfter = n
	}
}

// OpenTimeout is how long the circuit stays open before letting
// requests through again. The default is 60s.
func OpenTimeout(d time.Duration) Option {
	return func(o *options) {
		o.openTimeout = d
	}
}

// HalfOpenRequests is the number of requests allowed through while
// the circuit is half open. The default is 1.
func HalfOpenRequests(n uint32) Option {
	return func(o *options) {
		o.halfOpenReqs = n
	}
}

// TripOnStatus registers response status codes which count as
// circuit breaker failures.
//
// Default: 500, 502, 503, 504
func TripOnStatus(codes ...int) Option {
	return func(o *options) {
		o.tripOn = append(o.tripOn, codes...)
	}
}

// Client sends requests built with [Client.Target].
type Client struct {
	hc  *http.Client
	log *zap.Logger
}

// New returns a [Client] configured with opts.
func New(opts ...Option) *Client {
	o := &options{
		logger:       zap.NewNop(),
		transport:    http.DefaultTransport,
		maxRetries:   2,
		minWait:      100 * time.Millisecond,
		maxWait:      5 * time.Second,
		tripAfter:    5,
		openTimeout:  60 * time.Second,
		halfOpenReqs: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	if len(o.tripOn) == 0 {
		o.tripOn = []int{
			http.StatusInternalServerError, // 500
			http.StatusBadGateway,          // 502
			http.StatusServiceUnavailable,  // 503
			http.StatusGatewayTimeout,      // 504
		}
	}

	log := o.logger
	if o.name != "" {
		log = log.Named(o.name)
	}

	rt := baseTransport(o.transport, o.tlsConfig)
	rt = otelhttp.NewTransport(rt)
	if o.tripAfter > 0 {
		rt = circuitBreaker(rt, o, log)
	}

	rc := retryablehttp.Client{
		HTTPClient: &http.Client{
			Transport: rt,
		},
		Logger:       nil,
		RetryWaitMin: o.minWait,
		RetryWaitMax: o.maxWait,
		RetryMax:     o.maxRetries,
		RequestLogHook: func(_ retryablehttp.Logger, req *http.Request, i int) {
			if i == 0 {
				return
			}
			log.Info("retrying http request", zap.String("url", req.URL.String()), zap.Int("request_attempt_count", i))
		},
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}

	hc := rc.StandardClient()
	hc.Timeout = o.timeout
	return &Client{
		hc:  hc,
		log: log,
	}
}

// HTTPClient returns the underlying http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.hc
}

func baseTransport(rt http.RoundTripper, tc *tls.Config) http.RoundTripper {
	if tc == nil {
		return rt
	}
	t, ok := rt.(*http.Transport)
	if !ok {
		return rt
	}
	t = t.Clone()
	t.TLSClientConfig = tc.Clone()
	return t
}

var errStatusCode = errors.New("status code error")

func circuitBreaker(rt http.RoundTripper, o *options, log *zap.Logger) http.RoundTripper {
	codes := make(map[int]struct{}, len(o.tripOn))
	for _, code := range o.tripOn {
		codes[code] = struct{}{}
	}

	return &circuitRoundTripper{
		RoundTripper: rt,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        o.name,
			MaxRequests: o.halfOpenReqs,
			Timeout:     o.openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= o.tripAfter
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				switch to {
				case gobreaker.StateOpen:
					log.Error("circuit has been opened")
				case gobreaker.StateHalfOpen:
					log.Warn("circuit is now half open and letting some requests through", zap.Uint32("max_requests_allowed_through", o.halfOpenReqs))
				case gobreaker.StateClosed:
					log.Info("circuit has been closed")
				}
			},
		}),
		onStatusCode: func(n int) error {
			if _, ok := codes[n]; ok {
				return errStatusCode
			}
			return nil
		},
	}
}

type circuitRoundTripper struct {
	http.RoundTripper
	cb           *gobreaker.CircuitBreaker
	onStatusCode func(int) error
}

// RoundTrip implements the http.RoundTripper interface. Responses with
// a tripping status code count as failures but are still returned.
func (rt *circuitRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	v, err := rt.cb.Execute(func() (interface{}, error) {
		resp, err := rt.RoundTripper.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		return resp, rt.onStatusCode(resp.StatusCode)
	})
	if errors.Is(err, errStatusCode) {
		return v.(*http.Response), nil
	}
	if err != nil {
		return nil, err
	}
	return v.(*http.Response), nil
}
