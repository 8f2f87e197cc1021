// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Json is a [Source] backed by a JSON object. Numbers are kept as
// json.Number until they're coerced to a property type.
type Json struct {
	r io.Reader
}

// FromJson reads a JSON object from r. If r is also an io.Closer
// it will be closed once read.
func FromJson(r io.Reader) Json {
	return Json{r: r}
}

// InvalidJsonError is returned by [Json.Apply] when the document
// is not a JSON object. Offset is the byte offset of a syntax error
// or -1 if unknown.
type InvalidJsonError struct {
	Offset int64
	Cause  error
}

func (e InvalidJsonError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("config: invalid json document: %s", e.Cause)
	}
	return fmt.Sprintf("config: invalid json document at offset %d: %s", e.Offset, e.Cause)
}

func (e InvalidJsonError) Unwrap() error {
	return e.Cause
}

// Apply implements the [Source] interface.
func (src Json) Apply(store Store) error {
	return applyDocument(store, src.r, decodeJson)
}

func decodeJson(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var tree map[string]any
	err := dec.Decode(&tree)
	if err == nil {
		return tree, nil
	}

	offset := int64(-1)
	var serr *json.SyntaxError
	if errors.As(err, &serr) {
		offset = serr.Offset
	}
	return nil, InvalidJsonError{Offset: offset, Cause: err}
}
