package bank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding of a bank.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatForPath picks the format from the file extension. JSON is the default.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load parses a flat question → answer mapping.
func Load(data []byte, f Format) (*Bank, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: content is empty", ErrMalformed)
	}
	var (
		entries map[string]string
		err     error
	)
	switch f {
	case FormatYAML:
		entries, err = parseYAML(data)
	default:
		entries, err = parseJSON(data)
	}
	if err != nil {
		return nil, err
	}
	return New(entries), nil
}

func parseJSON(data []byte) (map[string]string, error) {
	var raw map[string]any
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: parse json: %v", ErrMalformed, err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("%w: parse json: trailing content", ErrMalformed)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: parse json: top level is not an object", ErrMalformed)
	}
	entries := make(map[string]string, len(raw))
	for q, v := range raw {
		answer, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: parse json: value for %q is not a string", ErrMalformed, q)
		}
		entries[q] = answer
	}
	return entries, nil
}

func parseYAML(data []byte) (map[string]string, error) {
	var node yaml.Node
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&node); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %v", ErrMalformed, err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("%w: parse yaml: multiple documents are not supported", ErrMalformed)
	}
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: parse yaml: top level is not a mapping", ErrMalformed)
	}
	entries := make(map[string]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if !isYAMLString(key) || !isYAMLString(value) {
			return nil, fmt.Errorf("%w: parse yaml: line %d: expected string key and value", ErrMalformed, key.Line)
		}
		entries[key.Value] = value.Value
	}
	return entries, nil
}

// isYAMLString accepts quoted scalars and plain ones that resolve to strings,
// so 4 or true must be quoted like in JSON.
func isYAMLString(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

// Marshal encodes the remaining pairs. Output is UTF-8 with sorted keys.
func (b *Bank) Marshal(f Format) ([]byte, error) {
	entries := b.Entries()
	if f == FormatYAML {
		data, err := yaml.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return data, nil
	}
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return buf.Bytes(), nil
}
