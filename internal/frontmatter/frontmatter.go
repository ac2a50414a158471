// Package frontmatter separates YAML front matter from a Markdown body and
// decodes the fields docgraph cares about into a typed record.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

var utf8BOM = []byte("\ufeff")

// Split separates YAML front matter (`---` delimited) from the Markdown body.
//
// If the document does not start with a delimiter, had is false and body is
// the full input. Both LF and CRLF documents are handled; the newline style is
// taken from the first line break in the input. A leading UTF-8 byte order
// mark is dropped and never reaches raw or body.
func Split(content []byte) (raw []byte, body []byte, had bool, err error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	nl := detectNewline(content)
	delim := []byte("---" + nl)
	if !bytes.HasPrefix(content, delim) {
		return nil, content, false, nil
	}

	start := len(delim)
	if bytes.HasPrefix(content[start:], delim) {
		return []byte{}, content[start+len(delim):], true, nil
	}
	if string(content[start:]) == "---" {
		return []byte{}, []byte{}, true, nil
	}

	closing := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closing)
	if idx < 0 {
		// A closing delimiter on the very last line has no trailing newline.
		tail := []byte(nl + "---")
		if bytes.HasSuffix(content, tail) && len(content)-len(tail) >= start {
			return content[start : len(content)-len(tail)+len(nl)], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closing):], true, nil
}

// ParseYAML parses raw YAML front matter (without delimiters) into a map.
func ParseYAML(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
