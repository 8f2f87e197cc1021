// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"os"
	"strings"

	"github.com/z5labs/bootstrap/config/key"
)

// Env is a [Source] whose properties are read from environment variables.
//
// A variable is mapped to a property name by lower casing it and replacing
// underscores with dots, e.g. JAKARTA_WS_RS_SEBOOTSTRAP_ROOTPATH becomes
// jakarta.ws.rs.sebootstrap.rootpath which matches [RootPathKey] since supported names are matched case insensitively.
type Env struct {
	prefixes []string
	environ  func() []string
}

// FromEnv returns a [Source] which reads the environment variables of the
// current process. Only variables starting with one of the given prefixes
// are read. With no prefixes every variable is read.
func FromEnv(prefixes ...string) Env {
	return Env{
		prefixes: prefixes,
		environ:  os.Environ,
	}
}

// Apply implements the [Source] interface.
func (src Env) Apply(store Store) error {
	for _, pair := range src.environ() {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || !src.matches(k) {
			continue
		}

		name := strings.ReplaceAll(strings.ToLower(k), "_", ".")
		err := store.Set(key.Parse(name), v)
		if err != nil {
			return err
		}
	}
	return nil
}

func (src Env) matches(name string) bool {
	if len(src.prefixes) == 0 {
		return true
	}
	for _, prefix := range src.prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
