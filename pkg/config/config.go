// Package config loads tlc's settings from a TOML or YAML file.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a configuration file.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// Config holds everything the CLI can be told from a file.
type Config struct {
	Log    Log    `toml:"log" yaml:"log"`
	Output Output `toml:"output" yaml:"output"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `toml:"level" yaml:"level"`   // debug, info, warn, error
	Format string `toml:"format" yaml:"format"` // text or json
}

// Output controls how diagnostics are rendered.
type Output struct {
	Color       bool `toml:"color" yaml:"color"`
	ShowSnippet bool `toml:"show_snippet" yaml:"show_snippet"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Log:    Log{Level: "warn", Format: "text"},
		Output: Output{Color: true, ShowSnippet: true},
	}
}

// Load reads path, choosing the decoder from its extension. Keys missing from
// the file keep their default values.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config file path cannot be empty")
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(content, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes content over the defaults and validates the result.
func Parse(content []byte, format Format) (*Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(bytes.NewReader(content)).Decode(cfg); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func detectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("cannot detect config format of %s", path)
}

// applyDefaults fills blank strings and rejects unknown values.
func (c *Config) applyDefaults() error {
	def := Default()
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)

	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// SlogLevel converts Log.Level for a slog handler.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
