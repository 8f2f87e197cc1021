// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package slogfield provides the slog.Attr constructors used across this module.
// Attributes which describe a server share their keys between
// providers so log queries work regardless of protocol.
package slogfield

import (
	"fmt"
	"log/slog"
	"net"
	"time"
)

func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

func Bool(key string, value bool) slog.Attr {
	return slog.Bool(key, value)
}

func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Error always uses the key "error".
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// Protocol is the protocol a server is serving, e.g. HTTPS.
func Protocol(protocol string) slog.Attr {
	return slog.String("protocol", protocol)
}

// Addr is a resolved network address. A nil addr is logged as "".
func Addr(addr net.Addr) slog.Attr {
	if addr == nil {
		return slog.String("addr", "")
	}
	return slog.String("addr", addr.String())
}

// ListenAddr is the host:port a server was asked to bind.
func ListenAddr(hostport string) slog.Attr {
	return slog.String("addr", hostport)
}

func RootPath(path string) slog.Attr {
	return slog.String("root_path", path)
}

// State is a lifecycle state, logged by name.
func State(s fmt.Stringer) slog.Attr {
	return slog.String("state", s.String())
}

// Graceful reports whether a server drained its connections before stopping.
func Graceful(graceful bool) slog.Attr {
	return slog.Bool("graceful", graceful)
}

// Elapsed is the time an operation took, in milliseconds.
func Elapsed(d time.Duration) slog.Attr {
	return slog.Int64("elapsed_ms", d.Milliseconds())
}
