package platform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/custody/pkg/core"
)

// Config is the on-disk form of custody.yaml. Zero values mean "use the default".
type Config struct {
	MaxCollaborators int    `yaml:"max_collaborators"`
	Codec            string `yaml:"codec"`
	EventBuffer      int    `yaml:"event_buffer"`
	LogLevel         string `yaml:"log_level"`
}

// LoadConfig reads and validates a custody.yaml.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a custody.yaml document. An empty document is valid.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.MaxCollaborators < 0 || cfg.MaxCollaborators > core.DefaultMaxCollaborators {
		return Config{}, fmt.Errorf("max_collaborators must be between 0 and %d", core.DefaultMaxCollaborators)
	}
	if cfg.EventBuffer < 0 {
		return Config{}, fmt.Errorf("event_buffer must not be negative")
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseLogLevel maps "debug", "info", "warn" and "error" to slog levels.
// The empty string is info.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
