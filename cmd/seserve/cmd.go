// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/z5labs/bootstrap"
	"github.com/z5labs/bootstrap/client"
	"github.com/z5labs/bootstrap/config"
	"github.com/z5labs/bootstrap/httperror"
	"github.com/z5labs/bootstrap/pkg/maskslog"
	"github.com/z5labs/bootstrap/pkg/otelconfig"
	"github.com/z5labs/bootstrap/pkg/slogfield"
	runtimehttp "github.com/z5labs/bootstrap/runtime/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "SEBOOTSTRAP"

// flagKeys maps command line flags to the configuration properties they set.
var flagKeys = map[string]string{
	"protocol":     config.ProtocolKey,
	"host":         config.HostKey,
	"port":         config.PortKey,
	"root-path":    config.RootPathKey,
	"client-auth":  config.SSLClientAuthenticationKey,
	"trace":        otelconfig.ExporterKey,
	"otlp-target":  otelconfig.OTLPTargetKey,
	"gcp-project":  otelconfig.GCPProjectKey,
	"sample-ratio": otelconfig.SampleRatioKey,
}

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "seserve",
		Short:        "Serve a greeting over HTTP or HTTPS",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
	}

	flags := cmd.Flags()
	flags.String("protocol", config.DefaultProtocol, "protocol to serve, HTTP or HTTPS")
	flags.String("host", config.DefaultHost, "host to bind")
	flags.Int("port", config.DefaultPort, "port to bind, 0 binds any free port and -1 the protocol default")
	flags.String("root-path", config.DefaultRootPath, "path every resource is served under")
	flags.String("client-auth", config.ClientAuthNone.String(), "TLS client authentication: NONE, OPTIONAL or MANDATORY")
	flags.String("cert", "", "PEM encoded TLS certificate file")
	flags.String("key", "", "PEM encoded TLS private key file")
	flags.String("config", "", "YAML config file, rendered as a text/template")
	flags.String("trace", "none", "trace exporter: none, stdout, otlp or gcp")
	flags.String("otlp-target", "localhost:4317", "OTLP collector address")
	flags.String("gcp-project", "", "Google Cloud project to export traces to")
	flags.Float64("sample-ratio", 1, "fraction of new traces which are sampled")

	v := newViper(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := flags.GetString("config")
		certFile, _ := flags.GetString("cert")
		keyFile, _ := flags.GetString("key")

		logHandler := maskslog.NewHandler(
			slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{AddSource: true}),
			maskslog.Keys(config.SSLContextKey),
		)
		log := slog.New(logHandler)

		cfg, err := configure(v, cfgFile, certFile, keyFile)
		if err != nil {
			log.ErrorContext(cmd.Context(), "failed to load configuration", slogfield.Error(err))
			return err
		}

		props := make([]any, 0, len(cfg.Names()))
		for _, name := range cfg.Names() {
			props = append(props, slogfield.Any(name, cfg.Property(name)))
		}
		log.InfoContext(cmd.Context(), "loaded configuration", slog.Group("config", props...))

		return serve(cmd, logHandler, cfg)
	}
	return cmd
}

// newViper binds the flags of cmd and the environment to their
// configuration properties. Every flag also has a short environment
// variable named after it, e.g. SEBOOTSTRAP_ROOT_PATH sets
// jakarta.ws.rs.SeBootstrap.RootPath. Any other property is read from
// its full name, e.g. SEBOOTSTRAP_HTTP_SHUTDOWNTIMEOUT.
func newViper(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		v.BindPFlag(key, cmd.Flags().Lookup(name))
		v.BindEnv(key, flagEnv(name))
	}
	return v
}

func flagEnv(flag string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// configure layers the config file, environment and command line flags
// in increasing order of precedence.
func configure(v *viper.Viper, cfgFile, certFile, keyFile string) (config.Configuration, error) {
	var props []config.Property
	props = append(props, runtimehttp.Properties()...)
	props = append(props, otelconfig.Properties()...)

	b := config.NewBuilder(config.Supports(props...))
	b.Property(otelconfig.ServiceNameKey, "seserve")

	if cfgFile != "" {
		fsys := os.DirFS(filepath.Dir(cfgFile))
		r := config.NewFileReader(fsys, filepath.Base(cfgFile))
		defer r.Close()

		b.FromSource(config.FromYaml(config.RenderTextTemplate(r)))
	}
	b.FromExternal(v)

	if certFile != "" || keyFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return config.Configuration{}, err
		}
		b.SSLContext(&tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})
	}

	return b.Build()
}

func serve(cmd *cobra.Command, logHandler slog.Handler, cfg config.Configuration) error {
	ctx := cmd.Context()
	log := slog.New(logHandler)

	ti, err := otelconfig.FromConfiguration(cfg)
	if err != nil {
		log.ErrorContext(ctx, "invalid trace configuration", slogfield.Error(err))
		return err
	}
	shutdownTracing, err := otelconfig.Install(ctx, ti)
	if err != nil {
		log.ErrorContext(ctx, "failed to initialize tracing", slogfield.Error(err))
		return err
	}
	defer shutdownTracing(context.WithoutCancel(ctx))

	p := runtimehttp.NewProvider(runtimehttp.LogHandler(logHandler))
	inst, err := bootstrap.Start(ctx, p, greeter(), cfg).Await(ctx)
	if err != nil {
		return err
	}

	baseURL, err := client.BaseURL(inst.Configuration())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", baseURL)

	var stopErr error
	<-bootstrap.StopOnShutdown(ctx, inst, func(_ bootstrap.StopResult, err error) {
		stopErr = err
	})
	return stopErr
}

func greeter() bootstrap.Application {
	return bootstrap.NewApplication(
		bootstrap.WithResource(
			bootstrap.Handle("GET /hello", httperror.HandlerFunc(hello)),
		),
	)
}

func hello(w http.ResponseWriter, r *http.Request) error {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "world"
	}
	if len(name) > 64 {
		return httperror.BadRequest("name must be at most 64 characters")
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := fmt.Fprintf(w, "Hello, %s!", name)
	return err
}
