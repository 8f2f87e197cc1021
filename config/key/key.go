// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package key provides the types used to address configuration properties.
package key

import (
	"strings"
)

// Keyer is implemented by anything which can name a configuration property.
type Keyer interface {
	Key() string
}

// Chain is a property name made of nested segments, e.g. a YAML
// document's nested mappings. The segments are joined with a dot.
type Chain []Keyer

// Key implements the [Keyer] interface.
func (k Chain) Key() string {
	ss := make([]string, len(k))
	for i := range k {
		ss[i] = k[i].Key()
	}
	return strings.Join(ss, ".")
}

// Name is a single, already fully qualified, property name.
type Name string

// Key implements the [Keyer] interface.
func (k Name) Key() string {
	return string(k)
}

// Parse splits a dotted property name into its [Chain] of segments.
func Parse(s string) Chain {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ".")
	chain := make(Chain, len(parts))
	for i, p := range parts {
		chain[i] = Name(p)
	}
	return chain
}
