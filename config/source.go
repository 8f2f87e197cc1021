// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import "github.com/z5labs/bootstrap/config/key"

// Store is anything properties can be written to. [Builder] is a Store.
type Store interface {
	Set(key.Keyer, any) error
}

// Source is a bulk provider of properties, e.g. a YAML document.
type Source interface {
	Apply(Store) error
}

// SourceFunc is a func implementation of the [Source] interface.
type SourceFunc func(Store) error

// Apply implements the [Source] interface.
func (f SourceFunc) Apply(store Store) error {
	return f(store)
}

// Map is an ordinary map[string]any which implements the [Source] interface.
// Nested maps are flattened into dotted property names so that
//
//	Map{KeyPrefix: map[string]any{"Port": 8080}}
//
// sets the property "jakarta.ws.rs.SeBootstrap.Port".
type Map map[string]any

// Apply implements the [Source] interface.
func (m Map) Apply(store Store) error {
	return walkMap(m, store, nil)
}

func walkMap(m map[string]any, store Store, chain key.Chain) error {
	for k, v := range m {
		next := append(chain[:len(chain):len(chain)], key.Name(k))
		switch x := v.(type) {
		case map[string]any:
			err := walkMap(x, store, next)
			if err != nil {
				return err
			}
		case Map:
			err := walkMap(x, store, next)
			if err != nil {
				return err
			}
		default:
			err := store.Set(next, x)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Sources composes multiple [Source]s into one. Later sources
// override values set by earlier ones.
func Sources(srcs ...Source) Source {
	return SourceFunc(func(store Store) error {
		for _, src := range srcs {
			err := src.Apply(store)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
