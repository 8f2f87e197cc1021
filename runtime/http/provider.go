// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/z5labs/bootstrap"
	"github.com/z5labs/bootstrap/config"
	"github.com/z5labs/bootstrap/future"
	"github.com/z5labs/bootstrap/lifecycle"
	"github.com/z5labs/bootstrap/pkg/health"
	"github.com/z5labs/bootstrap/pkg/noop"
	"github.com/z5labs/bootstrap/pkg/otelslog"
	"github.com/z5labs/bootstrap/pkg/slogfield"

)

// Provider specific configuration properties.
const (
	ReadTimeoutKey       = "http.readTimeout"
	ReadHeaderTimeoutKey = "http.readHeaderTimeout"
	WriteTimeoutKey      = "http.writeTimeout"
	IdleTimeoutKey       = "http.idleTimeout"
	ShutdownTimeoutKey   = "http.shutdownTimeout"
	MaxHeaderBytesKey    = "http.maxHeaderBytes"
)

// Properties returns the provider specific configuration properties.
func Properties() []config.Property {
	return []config.Property{
		config.PropertyOf[time.Duration](ReadTimeoutKey),
		config.PropertyOf[time.Duration](ReadHeaderTimeoutKey),
		config.PropertyOf[time.Duration](WriteTimeoutKey),
		config.PropertyOf[time.Duration](IdleTimeoutKey),
		config.PropertyOf[time.Duration](ShutdownTimeoutKey),
		config.PropertyOf[int](MaxHeaderBytesKey),
	}
}

// Option configures a [Provider].
type Option func(*Provider)

// LogHandler sets the slog.Handler used by the [Provider] and its instances.
func LogHandler(h slog.Handler) Option {
	return func(p *Provider) {
		p.logHandler = h
	}
}

// ReadTimeout sets the maximum duration for reading the entire
// request, including the body. The default is 5 seconds.
func ReadTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.readTimeout = d
	}
}

// ReadHeaderTimeout sets the maximum duration for reading
// request headers. The default is 2 seconds.
func ReadHeaderTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.readHeaderTimeout = d
	}
}

// WriteTimeout sets the maximum duration before timing out
// writes of the response. The default is 10 seconds.
func WriteTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.writeTimeout = d
	}
}

// IdleTimeout sets the maximum duration to wait for the next request
// when keep-alives are enabled. The default is 120 seconds.
func IdleTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.idleTimeout = d
	}
}

// ShutdownTimeout bounds how long a graceful stop waits for in-flight
// requests before connections are forcibly closed. The default is 30 seconds.
func ShutdownTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.shutdownTimeout = d
	}
}

// MaxHeaderBytes sets the maximum number of bytes the server will read
// parsing the request header. The default is 1048576 bytes (1 MB).
func MaxHeaderBytes(n int) Option {
	return func(p *Provider) {
		p.maxHeaderBytes = n
	}
}

// DefaultPort sets the port used for protocol when the requested port is -1.
func DefaultPort(protocol string, port int) Option {
	return func(p *Provider) {
		p.defaultPorts[strings.ToUpper(protocol)] = port
	}
}

// HealthEndpoints enables or disables the health endpoints. They're enabled by default.
func HealthEndpoints(enabled bool) Option {
	return func(p *Provider) {
		p.healthEndpoints = enabled
	}
}

// Readiness combines m with the readiness of every [Instance].
func Readiness(m health.Metric) Option {
	return func(p *Provider) {
		p.readiness = append(p.readiness, m)
	}
}

// Liveness combines m with the liveness of every [Instance].
func Liveness(m health.Metric) Option {
	return func(p *Provider) {
		p.liveness = append(p.liveness, m)
	}
}

// HealthTimeout bounds how long the metrics given to [Readiness] and
// [Liveness] may take to answer a probe. It defaults to 5s.
func HealthTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.healthTimeout = d
	}
}

// OnPostStart registers a hook which runs once an [Instance] serves
// requests. A failing hook fails the start of the [Instance].
func OnPostStart(hook lifecycle.Hook) Option {
	return func(p *Provider) {
		p.hooks.OnPostStart(hook)
	}
}

// OnPostStop registers a hook which runs once an [Instance] stopped.
func OnPostStop(hook lifecycle.Hook) Option {
	return func(p *Provider) {
		p.hooks.OnPostStop(hook)
	}
}

// Provider implements the [bootstrap.Provider] interface on top of http.Server.
type Provider struct {
	logHandler slog.Handler
	listen     func(network, address string) (net.Listener, error)

	readTimeout       time.Duration
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	shutdownTimeout   time.Duration
	maxHeaderBytes    int
	defaultPorts      map[string]int

	healthEndpoints bool
	healthTimeout   time.Duration
	readiness       []health.Metric
	liveness        []health.Metric

	hooks *lifecycle.Context
}

// NewProvider returns a [Provider] configured with opts.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		logHandler:        noop.LogHandler{},
		listen:            net.Listen,
		readTimeout:       5 * time.Second,
		readHeaderTimeout: 2 * time.Second,
		writeTimeout:      10 * time.Second,
		idleTimeout:       120 * time.Second,
		shutdownTimeout:   30 * time.Second,
		maxHeaderBytes:    1048576,
		defaultPorts: map[string]int{
			"HTTP":  80,
			"HTTPS": 443,
		},
		healthEndpoints: true,
		healthTimeout:   5 * time.Second,
		hooks:           &lifecycle.Context{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewConfigurationBuilder implements the [bootstrap.Provider] interface.
// The returned builder supports the provider specific [Properties].
func (p *Provider) NewConfigurationBuilder() *config.Builder {
	return config.NewBuilder(config.Supports(Properties()...))
}

// Bootstrap implements the [bootstrap.Provider] interface.
//
// If ctx carries a [lifecycle.Context], its hooks run in addition to
// the ones registered with [OnPostStart] and [OnPostStop].
func (p *Provider) Bootstrap(ctx context.Context, app bootstrap.Application, cfg config.Configuration) *future.Future[bootstrap.Instance] {
	return future.Go(ctx, func(ctx context.Context) (bootstrap.Instance, error) {
		inst, err := p.start(ctx, app, cfg)
		if err != nil {
			return nil, err
		}
		return inst, nil
	})
}

type serverSettings struct {
	protocol string
	host     string
	port     int
	rootPath string
	tls      *tls.Config

	readTimeout       time.Duration
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	shutdownTimeout   time.Duration
	maxHeaderBytes    int
}

func (p *Provider) settings(cfg config.Configuration) (s serverSettings, err error) {
	protocol, err := cfg.Protocol()
	if err != nil {
		return s, err
	}
	s.protocol = strings.ToUpper(strings.TrimSpace(protocol))
	if s.protocol != "HTTP" && s.protocol != "HTTPS" {
		return s, UnsupportedProtocolError{Protocol: protocol}
	}

	s.host, err = cfg.Host()
	if err != nil {
		return s, err
	}
	s.port, err = cfg.Port()
	if err != nil {
		return s, err
	}
	if s.port == config.DefaultPort {
		s.port = p.defaultPorts[s.protocol]
	}
	if s.port < 0 || s.port > 65535 {
		return s, InvalidPortError{Port: s.port}
	}

	s.rootPath, err = cfg.RootPath()
	if err != nil {
		return s, err
	}

	if s.protocol == "HTTPS" {
		s.tls, err = tlsConfig(cfg)
		if err != nil {
			return s, err
		}
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{key: ReadTimeoutKey, def: p.readTimeout, dst: &s.readTimeout},
		{key: ReadHeaderTimeoutKey, def: p.readHeaderTimeout, dst: &s.readHeaderTimeout},
		{key: WriteTimeoutKey, def: p.writeTimeout, dst: &s.writeTimeout},
		{key: IdleTimeoutKey, def: p.idleTimeout, dst: &s.idleTimeout},
		{key: ShutdownTimeoutKey, def: p.shutdownTimeout, dst: &s.shutdownTimeout},
	}
	for _, d := range durations {
		*d.dst, err = config.GetOr(cfg, d.key, d.def)
		if err != nil {
			return s, err
		}
	}

	s.maxHeaderBytes, err = config.GetOr(cfg, MaxHeaderBytesKey, p.maxHeaderBytes)
	return s, err
}

func tlsConfig(cfg config.Configuration) (*tls.Config, error) {
	sslContext, err := cfg.SSLContext()
	if err != nil {
		return nil, err
	}
	ca, err := cfg.SSLClientAuthentication()
	if err != nil {
		return nil, err
	}

	tc := sslContext.Clone()
	if len(tc.Certificates) == 0 && tc.GetCertificate == nil && tc.GetConfigForClient == nil {
		return nil, ErrMissingCertificate
	}

	switch ca {
	case config.ClientAuthOptional:
		tc.ClientAuth = tls.VerifyClientCertIfGiven
	case config.ClientAuthMandatory:
		tc.ClientAuth = tls.RequireAndVerifyClientCert
	default:
		tc.ClientAuth = tls.NoClientCert
	}
	if len(tc.NextProtos) == 0 {
		tc.NextProtos = []string{"h2", "http/1.1"}
	}
	return tc, nil
}

func bindHost(host string) string {
	switch strings.TrimSpace(host) {
	case "", "*", "0.0.0.0", "::", "[::]":
		return ""
	case "localhost":
		return "127.0.0.1"
	default:
		return strings.Trim(host, "[]")
	}
}

func (p *Provider) start(ctx context.Context, app bootstrap.Application, cfg config.Configuration) (*Instance, error) {
	log := otelslog.New(p.logHandler, otelslog.SpanEvents(slog.LevelError))

	s, err := p.settings(cfg)
	if err != nil {
		log.ErrorContext(ctx, "invalid configuration", slogfield.Error(err))
		return nil, err
	}

	inst := &Instance{
		log:             log,
		shutdownTimeout: s.shutdownTimeout,
		postStop:        p.postStopHook(ctx),
		stopReq:         make(chan context.Context, 1),
	}

	h, err := p.handler(app, s.rootPath, inst)
	if err != nil {
		log.ErrorContext(ctx, "failed to mount application", slogfield.Error(err))
		return nil, err
	}

	addr := net.JoinHostPort(bindHost(s.host), strconv.Itoa(s.port))
	ls, err := p.listen("tcp", addr)
	if err != nil {
		log.ErrorContext(ctx, "failed to listen for connections", slogfield.ListenAddr(addr), slogfield.Error(err))
		return nil, ListenError{Addr: addr, Cause: err}
	}

	actualPort := s.port
	if tcpAddr, ok := ls.Addr().(*net.TCPAddr); ok {
		actualPort = tcpAddr.Port
	}
	if s.tls != nil {
		ls = tls.NewListener(ls, s.tls)
	}

	inst.cfg, err = actualConfiguration(app, cfg, actualPort)
	if err != nil {
		ls.Close()
		return nil, err
	}

	baseCtx := context.WithoutCancel(ctx)
	inst.ls = ls
	inst.srv = &http.Server{
		Handler:           h,
		TLSConfig:         s.tls,
		ReadTimeout:       s.readTimeout,
		ReadHeaderTimeout: s.readHeaderTimeout,
		WriteTimeout:      s.writeTimeout,
		IdleTimeout:       s.idleTimeout,
		MaxHeaderBytes:    s.maxHeaderBytes,
		BaseContext: func(net.Listener) context.Context {
			return baseCtx
		},
	}

	inst.serve(baseCtx)
	if !inst.advance(bootstrap.StateRunning) {
		_, stopErr := inst.Stop(ctx).Await(baseCtx)
		return nil, errors.Join(errServerFailed, stopErr)
	}

	err = p.postStartHook(ctx).Run(ctx)
	if err != nil {
		log.ErrorContext(ctx, "post start hook failed", slogfield.Error(err))
		_, stopErr := inst.Stop(ctx).Await(baseCtx)
		return nil, errors.Join(err, stopErr)
	}

	log.InfoContext(
		ctx,
		"started server",
		slogfield.Protocol(s.protocol),
		slogfield.Addr(ls.Addr()),
		slogfield.RootPath(s.rootPath),
	)
	return inst, nil
}

// actualConfiguration layers cfg on top of the application properties
// and records the port which was actually bound.
func actualConfiguration(app bootstrap.Application, cfg config.Configuration, port int) (config.Configuration, error) {
	b := config.NewBuilder()
	for name, v := range app.Properties() {
		b.Property(name, v)
	}
	return b.Merge(cfg).Port(port).Build()
}

func (p *Provider) postStartHook(ctx context.Context) lifecycle.Hook {
	hooks := []lifecycle.Hook{p.hooks.PostStart()}
	if lc, ok := lifecycle.FromContext(ctx); ok {
		hooks = append(hooks, lc.PostStart())
	}
	return lifecycle.MultiHook(hooks...)
}

// postStopHook unwinds the hooks of postStartHook in reverse.
func (p *Provider) postStopHook(ctx context.Context) lifecycle.Hook {
	var hooks []lifecycle.Hook
	if lc, ok := lifecycle.FromContext(ctx); ok {
		hooks = append(hooks, lc.PostStop())
	}
	return lifecycle.MultiHook(append(hooks, p.hooks.PostStop())...)
}
