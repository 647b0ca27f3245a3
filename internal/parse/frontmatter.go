package parse

import (
	"bytes"
	"fmt"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// FrontMatter decodes the leading metadata block of a content file. YAML is
// fenced by "---" lines, TOML by "+++" lines, and JSON is a leading object.
// Content without a block yields an empty mapping.
func FrontMatter(content []byte) (map[string]any, error) {
	block, format, err := SplitFrontMatter(content)
	if err != nil {
		return nil, err
	}
	if format == FormatUnknown {
		return map[string]any{}, nil
	}
	return Decode(block, format)
}

// SplitFrontMatter returns the raw front matter block and its format.
// The block excludes YAML/TOML fences and includes the JSON braces.
func SplitFrontMatter(content []byte) ([]byte, Format, error) {
	content = bytes.TrimPrefix(content, bom)
	if len(content) == 0 {
		return nil, FormatUnknown, nil
	}

	format := FormatForDelimiter(content[0])
	switch format {
	case FormatYAML, FormatTOML:
		fence := []byte("---")
		if format == FormatTOML {
			fence = []byte("+++")
		}
		first, rest, ok := cutLine(content)
		if !ok || !bytes.Equal(bytes.TrimRight(first, " \t\r"), fence) {
			return nil, FormatUnknown, nil
		}
		var block []byte
		for len(rest) > 0 {
			var line []byte
			line, rest, _ = cutLine(rest)
			if bytes.Equal(bytes.TrimRight(line, " \t\r"), fence) {
				return block, format, nil
			}
			block = append(block, line...)
			block = append(block, '\n')
		}
		return nil, format, &Error{Format: format, Err: fmt.Errorf("front matter is missing its closing %q", fence)}
	case FormatJSON:
		if !opensJSONObject(content) {
			return nil, FormatUnknown, nil
		}
		end, err := jsonObjectEnd(content)
		if err != nil {
			return nil, format, &Error{Format: format, Err: err}
		}
		return content[:end], format, nil
	default:
		return nil, FormatUnknown, nil
	}
}

// cutLine splits b at the first newline. ok is false when b held no newline.
func cutLine(b []byte) (line, rest []byte, ok bool) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return b, nil, false
	}
	return b[:i], b[i+1:], true
}

// opensJSONObject reports whether the leading brace starts JSON front matter:
// either it stands alone on the first line or a key string follows it. A
// shortcode such as "{{< figure >}}" does neither.
func opensJSONObject(b []byte) bool {
	first, _, _ := cutLine(b)
	if len(bytes.TrimRight(first, " \t\r")) == 1 {
		return true
	}
	rest := bytes.TrimLeft(b[1:], " \t")
	return len(rest) > 0 && rest[0] == '"'
}

// jsonObjectEnd returns the offset just past the object that opens b.
func jsonObjectEnd(b []byte) (int, error) {
	depth := 0
	inString := false
	escaped := false
	for i, c := range b {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, fmt.Errorf("front matter object is not closed")
}
