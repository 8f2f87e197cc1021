// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"bytes"
	"io"

	"github.com/z5labs/bootstrap/internal/try"
)

// decodeFunc parses a whole document into a tree of properties.
type decodeFunc func([]byte) (map[string]any, error)

// applyDocument reads r to completion, decodes it and flattens the
// result into store. An empty document holds no properties.
func applyDocument(store Store, r io.Reader, decode decodeFunc) (err error) {
	defer try.Close(&err, r)

	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}

	tree, err := decode(b)
	if err != nil {
		return err
	}
	return Map(tree).Apply(store)
}
