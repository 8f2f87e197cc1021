// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"crypto/tls"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfiguration_defaults(t *testing.T) {
	t.Run("will resolve every well-known property to its default", func(t *testing.T) {
		t.Run("if the configuration was built without overrides", func(t *testing.T) {
			cfg, err := NewBuilder().Build()
			require.NoError(t, err)

			protocol, err := cfg.Protocol()
			require.NoError(t, err)
			assert.Equal(t, "HTTP", protocol)

			host, err := cfg.Host()
			require.NoError(t, err)
			assert.Equal(t, "localhost", host)

			port, err := cfg.Port()
			require.NoError(t, err)
			assert.Equal(t, -1, port)

			rootPath, err := cfg.RootPath()
			require.NoError(t, err)
			assert.Equal(t, "/", rootPath)

			ca, err := cfg.SSLClientAuthentication()
			require.NoError(t, err)
			assert.Equal(t, ClientAuthNone, ca)

			tc, err := cfg.SSLContext()
			require.NoError(t, err)
			assert.NotNil(t, tc)
		})

		t.Run("if the configuration is the zero value", func(t *testing.T) {
			var cfg Configuration

			protocol, err := cfg.Protocol()
			require.NoError(t, err)
			assert.Equal(t, DefaultProtocol, protocol)
			assert.Empty(t, cfg.Names())
			assert.Empty(t, cfg.Properties())
		})
	})
}

func TestConfiguration_typedAccessors(t *testing.T) {
	t.Run("will return a TypeMismatchError", func(t *testing.T) {
		testCases := []struct {
			Name string
			Key  string
			Read func(Configuration) error
		}{
			{
				Name: "if protocol is not a string",
				Key:  ProtocolKey,
				Read: func(c Configuration) error {
					_, err := c.Protocol()
					return err
				},
			},
			{
				Name: "if host is not a string",
				Key:  HostKey,
				Read: func(c Configuration) error {
					_, err := c.Host()
					return err
				},
			},
			{
				Name: "if root path is not a string",
				Key:  RootPathKey,
				Read: func(c Configuration) error {
					_, err := c.RootPath()
					return err
				},
			},
			{
				Name: "if ssl context is not a *tls.Config",
				Key:  SSLContextKey,
				Read: func(c Configuration) error {
					_, err := c.SSLContext()
					return err
				},
			},
			{
				Name: "if ssl client authentication is not a ClientAuth",
				Key:  SSLClientAuthenticationKey,
				Read: func(c Configuration) error {
					_, err := c.SSLClientAuthentication()
					return err
				},
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				cfg, err := NewBuilder().Property(testCase.Key, struct{}{}).Build()
				require.NoError(t, err)

				err = testCase.Read(cfg)

				var tmerr TypeMismatchError
				if !assert.ErrorAs(t, err, &tmerr) {
					return
				}
				assert.Equal(t, testCase.Key, tmerr.Key)
				assert.NotEmpty(t, tmerr.Error())
			})
		}

		t.Run("if port is stored as a string", func(t *testing.T) {
			cfg, err := NewBuilder().Property(PortKey, "8080").Build()
			require.NoError(t, err)

			_, err = cfg.Port()

			var tmerr TypeMismatchError
			if !assert.ErrorAs(t, err, &tmerr) {
				return
			}
			assert.Equal(t, "int", tmerr.Expected.String())
			assert.Equal(t, "string", tmerr.Actual.String())
		})
	})

	t.Run("will return the stored value", func(t *testing.T) {
		t.Run("if it has the expected type", func(t *testing.T) {
			tc := &tls.Config{ServerName: "example.com"}
			cfg, err := NewBuilder().
				Protocol("HTTPS").
				Host("0.0.0.0").
				Port(8443).
				RootPath("/api").
				SSLContext(tc).
				SSLClientAuthentication(ClientAuthOptional).
				Build()
			require.NoError(t, err)

			protocol, _ := cfg.Protocol()
			host, _ := cfg.Host()
			port, _ := cfg.Port()
			rootPath, _ := cfg.RootPath()
			sslContext, _ := cfg.SSLContext()
			ca, _ := cfg.SSLClientAuthentication()

			assert.Equal(t, "HTTPS", protocol)
			assert.Equal(t, "0.0.0.0", host)
			assert.Equal(t, 8443, port)
			assert.Equal(t, "/api", rootPath)
			assert.Same(t, tc, sslContext)
			assert.Equal(t, ClientAuthOptional, ca)
		})
	})
}

func TestConfiguration_Property(t *testing.T) {
	t.Run("will pass through unknown properties", func(t *testing.T) {
		cfg, err := NewBuilder().Property("x.y.z", 42).Build()
		require.NoError(t, err)

		assert.Equal(t, 42, cfg.Property("x.y.z"))
		assert.True(t, cfg.HasProperty("x.y.z"))
		assert.False(t, cfg.HasProperty("unset.key"))
		assert.Nil(t, cfg.Property("unset.key"))
		assert.Equal(t, []string{"x.y.z"}, cfg.Names())
	})

	t.Run("will return a copy of the properties", func(t *testing.T) {
		cfg, err := NewBuilder().Property("a", 1).Build()
		require.NoError(t, err)

		props := cfg.Properties()
		props["a"] = 2
		props["b"] = 3

		assert.Equal(t, 1, cfg.Property("a"))
		assert.False(t, cfg.HasProperty("b"))
	})
}

func TestGet(t *testing.T) {
	cfg, err := NewBuilder().Property("custom.count", 3).Build()
	require.NoError(t, err)

	t.Run("will report a missing property", func(t *testing.T) {
		v, ok, err := Get[int](cfg, "custom.missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, v)
	})

	t.Run("will return a present property", func(t *testing.T) {
		v, ok, err := Get[int](cfg, "custom.count")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 3, v)
	})

	t.Run("will fail on a type mismatch", func(t *testing.T) {
		_, _, err := Get[string](cfg, "custom.count")
		assert.ErrorAs(t, err, &TypeMismatchError{})
	})

	t.Run("will fall back to the default", func(t *testing.T) {
		v, err := GetOr(cfg, "custom.missing", "fallback")
		require.NoError(t, err)
		assert.Equal(t, "fallback", v)
	})
}

func TestClientAuth(t *testing.T) {
	t.Run("will round trip through text", func(t *testing.T) {
		for _, ca := range []ClientAuth{ClientAuthNone, ClientAuthOptional, ClientAuthMandatory} {
			b, err := ca.MarshalText()
			require.NoError(t, err)

			var got ClientAuth
			require.NoError(t, got.UnmarshalText(b))
			assert.Equal(t, ca, got)
		}
	})

	t.Run("will parse names case insensitively", func(t *testing.T) {
		var ca ClientAuth
		require.NoError(t, ca.UnmarshalText([]byte(" mandatory ")))
		assert.Equal(t, ClientAuthMandatory, ca)
	})

	t.Run("will return an UnknownClientAuthError", func(t *testing.T) {
		t.Run("if the name is not recognized", func(t *testing.T) {
			var ca ClientAuth
			err := ca.UnmarshalText([]byte("sometimes"))
			assert.ErrorAs(t, err, &UnknownClientAuthError{})
		})

		t.Run("if an out of range value is marshalled", func(t *testing.T) {
			_, err := ClientAuth(7).MarshalText()
			assert.ErrorAs(t, err, &UnknownClientAuthError{})
			assert.Equal(t, "ClientAuth(7)", ClientAuth(7).String())
		})
	})
}
