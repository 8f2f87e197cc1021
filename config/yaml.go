// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Yaml is a [Source] backed by a YAML document. Nested mappings become
// dotted property names, e.g. jakarta.ws.rs.SeBootstrap.Port.
type Yaml struct {
	r io.Reader
}

// FromYaml reads a YAML document from r. If r is also an io.Closer
// it will be closed once read.
func FromYaml(r io.Reader) Yaml {
	return Yaml{r: r}
}

// InvalidYamlError is returned by [Yaml.Apply] when the document
// is not a YAML mapping.
type InvalidYamlError struct {
	Cause error
}

func (e InvalidYamlError) Error() string {
	return fmt.Sprintf("config: invalid yaml document: %s", e.Cause)
}

func (e InvalidYamlError) Unwrap() error {
	return e.Cause
}

// Apply implements the [Source] interface.
func (src Yaml) Apply(store Store) error {
	return applyDocument(store, src.r, decodeYaml)
}

func decodeYaml(b []byte) (map[string]any, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(b, &tree); err != nil {
		return nil, InvalidYamlError{Cause: err}
	}
	return tree, nil
}
