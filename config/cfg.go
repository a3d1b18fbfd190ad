// Package config loads and validates the program's configuration: a
// handful of logging knobs plus the default input filename, grounded
// on the teacher's config.Config but trimmed to what a grammar-only
// CLI needs (spec.md §6, "Configuration surface").
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"
)

// LoggerConfig configures one logging sink.
type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

// LoggingConfig groups the console and file logging sinks.
type LoggingConfig struct {
	Console LoggerConfig `yaml:"console"`
	File    LoggerConfig `yaml:"file"`
}

// Config is the whole of this program's configuration.
type Config struct {
	// DefaultInput is the file read when the CLI is given no argument
	// (spec.md §6: "a bare invocation defaults to example.css").
	DefaultInput string        `yaml:"default_input" validate:"required"`
	Logging      LoggingConfig `yaml:"logging"`
}

// Default returns the configuration used when no config file is given:
// a normal-level console logger, no file logger, input example.css.
func Default() *Config {
	return &Config{
		DefaultInput: "example.css",
		Logging: LoggingConfig{
			Console: LoggerConfig{Level: "normal"},
			File:    LoggerConfig{Level: "none"},
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfiguration reads the YAML configuration at path, superimposed
// on Default(), and validates the result. An empty path returns
// Default() unvalidated-but-valid, matching the teacher's
// LoadConfiguration convention of tolerating "no file given".
func LoadConfiguration(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
