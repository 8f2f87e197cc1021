// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// FileReader opens a file within an fs.FS on its first Read. An open
// failure is sticky and returned by every Read.
type FileReader struct {
	fsys fs.FS
	name string

	opened bool
	file   fs.File
	err    error
}

// NewFileReader does not touch fsys until the first Read.
func NewFileReader(fsys fs.FS, name string) *FileReader {
	return &FileReader{
		fsys: fsys,
		name: name,
	}
}

// Name is the path of the file within its fs.FS.
func (r *FileReader) Name() string {
	return r.name
}

func (r *FileReader) open() error {
	if !r.opened {
		r.opened = true
		r.file, r.err = r.fsys.Open(r.name)
	}
	return r.err
}

func (r *FileReader) Read(b []byte) (int, error) {
	if err := r.open(); err != nil {
		return 0, err
	}
	return r.file.Read(b)
}

// Close is a no-op if the file was never opened.
func (r *FileReader) Close() error {
	if r.file == nil {
		return nil
	}
	f := r.file
	r.file = nil
	return f.Close()
}

// UnsupportedFileError is returned when applying a [FromFile] source
// whose extension isn't recognized.
type UnsupportedFileError struct {
	Name string
}

func (e UnsupportedFileError) Error() string {
	return fmt.Sprintf("config: unsupported file format: %s", e.Name)
}

// FromFile returns a [Source] for the file at name within fsys, parsed
// according to its extension:
//
//   - .json as JSON
//   - .yaml, .yml or no extension as YAML
//   - .tmpl is rendered with [RenderTextTemplate] first and then parsed
//     by the extension preceding it, e.g. app.yaml.tmpl
func FromFile(fsys fs.FS, name string, opts ...TextTemplateOption) Source {
	var r io.Reader = NewFileReader(fsys, name)

	format := name
	if strings.EqualFold(path.Ext(format), ".tmpl") {
		format = strings.TrimSuffix(format, path.Ext(format))
		r = RenderTextTemplate(r, opts...)
	}

	switch strings.ToLower(path.Ext(format)) {
	case ".json":
		return FromJson(r)
	case ".yaml", ".yml", "":
		return FromYaml(r)
	default:
		return SourceFunc(func(Store) error {
			return UnsupportedFileError{Name: name}
		})
	}
}
