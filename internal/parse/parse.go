// Package parse decodes the structured-text formats a Hugo site is written in.
//
// Config fragments and data files are decoded whole by extension; content files
// carry a leading front matter block whose delimiter selects the format.
package parse

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/oj"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Format identifies a structured-text encoding.
type Format string

const (
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatJSON    Format = "json"
	FormatUnknown Format = ""
)

// FormatForPath detects the format from a file extension.
func FormatForPath(p string) Format {
	switch strings.ToLower(path.Ext(p)) {
	case ".yml", ".yaml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// FormatForDelimiter detects a front matter format from its first byte.
func FormatForDelimiter(b byte) Format {
	switch b {
	case '-':
		return FormatYAML
	case '+':
		return FormatTOML
	case '{':
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// Error is a decode failure annotated with the position reported by the decoder.
// Line and Column are zero when the decoder did not report them.
type Error struct {
	Path   string
	Format Format
	Line   int
	Column int
	Err    error
}

func (e *Error) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "<input>"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
		if e.Column > 0 {
			loc = fmt.Sprintf("%s:%d", loc, e.Column)
		}
	}
	return fmt.Sprintf("%s: invalid %s: %s", loc, e.Format, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// File reads path from fsys and decodes it according to its extension.
// Files of an unknown format decode to nil without error.
func File(fsys afero.Fs, p string) (map[string]any, error) {
	format := FormatForPath(p)
	if format == FormatUnknown {
		return nil, nil
	}
	data, err := afero.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	m, err := Decode(data, format)
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) {
			perr.Path = p
		}
		return nil, err
	}
	return m, nil
}

// Value reads and decodes a file whose top level may be any value, as data
// files are allowed to be lists.
func Value(fsys afero.Fs, p string) (any, error) {
	format := FormatForPath(p)
	if format == FormatUnknown {
		return nil, nil
	}
	data, err := afero.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	v, err := DecodeValue(data, format)
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) {
			perr.Path = p
		}
		return nil, err
	}
	return v, nil
}

// Decode decodes data into a nested mapping. An unknown format returns nil, nil.
// Empty input decodes to an empty mapping.
func Decode(data []byte, format Format) (map[string]any, error) {
	v, err := DecodeValue(data, format)
	if err != nil || v == nil {
		if err == nil && format != FormatUnknown {
			return map[string]any{}, nil
		}
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &Error{Format: format, Err: fmt.Errorf("top-level value is %T, not a mapping", v)}
	}
	return m, nil
}

// DecodeValue decodes data of the given format into a normalised value tree in
// which every mapping is a map[string]any.
func DecodeValue(data []byte, format Format) (any, error) {
	switch format {
	case FormatYAML:
		var out any
		if err := yaml.Unmarshal(data, &out); err != nil {
			line, col := positionFromMessage(err.Error())
			return nil, &Error{Format: format, Line: line, Column: col, Err: err}
		}
		return Normalize(out), nil
	case FormatTOML:
		out := map[string]any{}
		if err := toml.Unmarshal(data, &out); err != nil {
			perr := &Error{Format: format, Err: err}
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				perr.Line, perr.Column = derr.Position()
			}
			return nil, perr
		}
		return Normalize(out), nil
	case FormatJSON:
		if len(strings.TrimSpace(string(data))) == 0 {
			return nil, nil
		}
		out, err := oj.Parse(data)
		if err != nil {
			line, col := positionFromMessage(err.Error())
			return nil, &Error{Format: format, Line: line, Column: col, Err: err}
		}
		return Normalize(out), nil
	default:
		return nil, nil
	}
}

// Normalize converts every nested mapping to map[string]any and every sequence
// to []any so callers only deal with one shape.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	default:
		return v
	}
}

var (
	lineRe     = regexp.MustCompile(`line (\d+)`)
	lineColRe  = regexp.MustCompile(`(\d+):(\d+)`)
	columnWord = regexp.MustCompile(`column (\d+)`)
)

// positionFromMessage recovers a line/column pair from decoder messages such as
// "yaml: line 3: ..." or "... at 2:14".
func positionFromMessage(msg string) (int, int) {
	if m := lineRe.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		col := 0
		if c := columnWord.FindStringSubmatch(msg); c != nil {
			col, _ = strconv.Atoi(c[1])
		}
		return line, col
	}
	if m := lineColRe.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		col, _ := strconv.Atoi(m[2])
		return line, col
	}
	return 0, 0
}
