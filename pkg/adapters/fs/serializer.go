// Package fs writes scenario reports and timeline exports to disk.
//
// Files are written atomically and encoded according to their extension.
// It never reads state back: the service itself lives in memory only.
package fs

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Serializer encodes a value for one file format.
type Serializer interface {
	Encode(w io.Writer, v any) error
}

// DefaultSerializers returns the serializers keyed by file extension.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		".json": JSONSerializer{},
		".yaml": YAMLSerializer{},
		".yml":  YAMLSerializer{},
	}
}

// JSONSerializer writes indented JSON.
type JSONSerializer struct{}

func (JSONSerializer) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAMLSerializer writes YAML with two-space indentation.
type YAMLSerializer struct{}

func (YAMLSerializer) Encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Exporter writes values under Dir.
type Exporter struct {
	Dir         string
	serializers map[string]Serializer
}

// NewExporter returns an Exporter for dir, creating it if needed.
func NewExporter(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &Exporter{Dir: dir, serializers: DefaultSerializers()}, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Export encodes v as format ("json", "yaml" or "yml") into a file named
// after name and returns its path. Names are reduced to a safe file name.
func (e *Exporter) Export(name, format string, v any) (string, error) {
	ext := "." + strings.TrimPrefix(strings.ToLower(format), ".")
	s, ok := e.serializers[ext]
	if !ok {
		return "", fmt.Errorf("unsupported export format %q", format)
	}

	base := strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)), "-"), "-.")
	if base == "" {
		base = "report"
	}

	path := filepath.Join(e.Dir, base+ext)
	err := writeAtomic(path, 0o644, func(w io.Writer) error {
		return s.Encode(w, v)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}
