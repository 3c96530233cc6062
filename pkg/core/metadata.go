package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Field is a single metadata entry.
type Field struct {
	Key   string
	Value string
}

// Metadata is an ordered string mapping. Keys keep their first insertion
// position; setting an existing key overwrites its value in place.
type Metadata []Field

// NewMetadata builds metadata from alternating key/value arguments.
// A trailing key without a value is ignored.
func NewMetadata(kv ...string) Metadata {
	var m Metadata
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i], kv[i+1])
	}
	return m
}

// Get returns the value stored under key.
func (m Metadata) Get(key string) (string, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Set adds key or overwrites its value.
func (m *Metadata) Set(key, value string) {
	for i := range *m {
		if (*m)[i].Key == key {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, Field{Key: key, Value: value})
}

// Merge applies every entry of other in order.
func (m *Metadata) Merge(other Metadata) {
	for _, f := range other {
		m.Set(f.Key, f.Value)
	}
}

// Len returns the number of keys.
func (m Metadata) Len() int { return len(m) }

// Keys returns the keys in insertion order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, f := range m {
		keys = append(keys, f.Key)
	}
	return keys
}

// Map returns an unordered copy.
func (m Metadata) Map() map[string]string {
	out := make(map[string]string, len(m))
	for _, f := range m {
		out[f.Key] = f.Value
	}
	return out
}

// Clone returns an independent copy.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	return append(Metadata(nil), m...)
}

// MarshalJSON encodes the metadata as a JSON object in insertion order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the key order of the input.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("metadata: expected object, got %v", tok)
	}
	var out Metadata
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("metadata: expected string key, got %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("metadata: value for %q: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// MarshalYAML encodes the metadata as an ordered YAML mapping.
func (m Metadata) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Value},
		)
	}
	return node, nil
}

// UnmarshalYAML decodes a YAML mapping keeping document order. Scalar values
// of any type are kept in their literal form.
func (m *Metadata) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*m = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("metadata: line %d: expected mapping", node.Line)
	}
	var out Metadata
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("metadata: line %d: value for %q must be a scalar", v.Line, k.Value)
		}
		out.Set(k.Value, v.Value)
	}
	*m = out
	return nil
}
