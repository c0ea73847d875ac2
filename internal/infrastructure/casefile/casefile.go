// Package casefile reads and writes PERM case documents.
//
// A document is YAML or JSON.  YAML streams may carry several cases separated
// by "---"; JSON documents may hold one case object or an array of cases.
// Unknown fields are rejected so that a mistyped milestone name is reported
// instead of being silently ignored.
package casefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/perm-tracker/internal/domain/lifecycle"
	"github.com/turtacn/perm-tracker/pkg/errors"
)

// Format is the encoding of a case document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension, defaulting to YAML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// ReadFile reads exactly one case from path.
func ReadFile(path string) (*lifecycle.Case, error) {
	cases, err := ReadAllFile(path)
	if err != nil {
		return nil, err
	}
	if len(cases) != 1 {
		return nil, errors.Newf(errors.ErrCodeCaseFileInvalid, "expected one case, found %d", len(cases)).WithDetail(path)
	}
	return cases[0], nil
}

// ReadAllFile reads every case in path.
func ReadAllFile(path string) ([]*lifecycle.Case, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeCaseFileNotFound, "case file not found").WithDetail(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeCaseFileInvalid, "cannot open case file").WithDetail(path)
	}
	defer f.Close()

	cases, err := Decode(f, FormatFor(path))
	if err != nil {
		var ae *errors.AppError
		if errors.As(err, &ae) && ae.Detail == "" {
			return nil, ae.WithDetail(path)
		}
		return nil, err
	}
	return cases, nil
}

// Decode reads all cases from r.
func Decode(r io.Reader, format Format) ([]*lifecycle.Case, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCaseFileInvalid, "cannot read case document")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeCaseFileInvalid, "case document is empty")
	}
	if format == FormatJSON {
		return decodeJSON(data)
	}
	return decodeYAML(data)
}

// DecodeCase reads exactly one case from r.
func DecodeCase(r io.Reader, format Format) (*lifecycle.Case, error) {
	cases, err := Decode(r, format)
	if err != nil {
		return nil, err
	}
	if len(cases) != 1 {
		return nil, errors.Newf(errors.ErrCodeCaseFileInvalid, "expected one case, found %d", len(cases))
	}
	return cases[0], nil
}

func decodeJSON(data []byte) ([]*lifecycle.Case, error) {
	trimmed := bytes.TrimSpace(data)
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	if trimmed[0] == '[' {
		var cases []*lifecycle.Case
		if err := dec.Decode(&cases); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCaseFileInvalid, "invalid JSON case document")
		}
		for i, c := range cases {
			if c == nil {
				return nil, errors.Newf(errors.ErrCodeCaseFileInvalid, "case %d is null", i)
			}
		}
		return cases, nil
	}

	c := &lifecycle.Case{}
	if err := dec.Decode(c); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCaseFileInvalid, "invalid JSON case document")
	}
	return []*lifecycle.Case{c}, nil
}

func decodeYAML(data []byte) ([]*lifecycle.Case, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cases []*lifecycle.Case
	for {
		c := &lifecycle.Case{}
		err := dec.Decode(c)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCaseFileInvalid, fmt.Sprintf("invalid YAML case document %d", len(cases)+1))
		}
		cases = append(cases, c)
	}
	if len(cases) == 0 {
		return nil, errors.New(errors.ErrCodeCaseFileInvalid, "case document is empty")
	}
	return cases, nil
}

// Encode writes c to w.
func Encode(w io.Writer, c *lifecycle.Case, format Format) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(c); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "cannot encode case")
		}
		return nil
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "cannot encode case")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "cannot encode case")
	}
	return nil
}

// WriteFile replaces path with c, encoded to match the file extension.  The
// document is written to a temporary sibling first and renamed into place.
// An existing file keeps its permissions; a new one is created 0644.
func WriteFile(path string, c *lifecycle.Case) error {
	var buf bytes.Buffer
	if err := Encode(&buf, c, FormatFor(path)); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".casefile-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "cannot create temporary case file").WithDetail(path)
	}
	defer os.Remove(tmp.Name())

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrCodeInternal, "cannot set case file mode").WithDetail(path)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrCodeInternal, "cannot write case file").WithDetail(path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "cannot write case file").WithDetail(path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "cannot replace case file").WithDetail(path)
	}
	return nil
}
