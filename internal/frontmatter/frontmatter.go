// Package frontmatter splits and reassembles `---` delimited YAML metadata
// headers on guideline documents. The body is treated as opaque bytes; only
// the header is parsed.
package frontmatter

import (
	"bytes"
	"errors"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates a document that opened a metadata
// header but never closed it.
var ErrMissingClosingDelimiter = errors.New("frontmatter start delimiter found but closing delimiter is missing")

// Style captures the newline shape needed for stable rewriting. It does not
// attempt to preserve original YAML formatting.
type Style struct {
	Newline string
}

// Split separates the YAML header (without delimiters) from the body.
// If the document does not start with a delimiter, had is false and body is
// the full input.
func Split(content []byte) (header []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)
	nl := style.Newline

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		// Empty header block.
		return []byte{}, rest[len(open):], true, style, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}

	return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, style, nil
}

// Join reassembles a document. If had is false the body is returned as-is.
func Join(header, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}
	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}
	delim := []byte("---" + nl)

	out := make([]byte, 0, 2*len(delim)+len(header)+len(body))
	out = append(out, delim...)
	out = append(out, header...)
	out = append(out, delim...)
	out = append(out, body...)
	return out
}

// Parse decodes a raw YAML header into a field map. An empty header parses to
// an empty, non-nil map.
func Parse(header []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(header) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(header, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Serialize encodes a field map as a YAML header (without delimiters).
// Keys are sorted so generated headers are byte-stable across runs.
func Serialize(fields map[string]any) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		valNode := &yaml.Node{}
		if err := valNode.Encode(fields[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valNode)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			break
		}
	}
	return Style{Newline: newline}
}
