// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/recordgrid/lib/column"
	"github.com/bureau-foundation/recordgrid/lib/record"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "RECORDGRID_CONFIG"

// Config is the recordgrid configuration.
type Config struct {
	// Data configures the record file.
	Data DataConfig `yaml:"data"`

	// Keys configures how new records are keyed.
	Keys KeysConfig `yaml:"keys"`

	// Columns overrides the default column layout. Entries are matched
	// to record fields by name; fields not listed keep their defaults.
	// The order of entries is the display order of the listed fields.
	Columns []ColumnConfig `yaml:"columns,omitempty"`

	// Log configures diagnostics output.
	Log LogConfig `yaml:"log"`
}

// DataConfig configures the record file.
type DataConfig struct {
	// Path is the record file. Relative paths resolve against the
	// working directory.
	// Default: records.jsonl
	Path string `yaml:"path"`

	// Format is "jsonl", "cbor", or empty to pick by file extension.
	Format string `yaml:"format"`

	// Watch reloads the grid when another process rewrites the file.
	Watch bool `yaml:"watch"`
}

// KeysConfig configures record key generation.
type KeysConfig struct {
	// Policy is "counter" or "ulid".
	// Default: counter
	Policy string `yaml:"policy"`
}

// ColumnConfig overrides one data column.
type ColumnConfig struct {
	// Field is the record field: name, age, or address.
	Field string `yaml:"field"`

	// Title replaces the header label.
	Title string `yaml:"title,omitempty"`

	// Kind is "text" or "number". Empty keeps the default kind.
	Kind string `yaml:"kind,omitempty"`

	// Required, when set, replaces the presence rule.
	Required *bool `yaml:"required,omitempty"`

	// Editable, when set, replaces the editable flag.
	Editable *bool `yaml:"editable,omitempty"`

	// Width is the display width in terminal columns. Zero keeps the
	// default.
	Width int `yaml:"width,omitempty"`
}

// LogConfig configures diagnostics.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level"`

	// Output is a file that receives JSON log records in addition to
	// the status bar. Empty disables file logging.
	Output string `yaml:"output"`
}

// Default returns the configuration used when no file is given. Every
// field a file omits keeps its value from here.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Path: "records.jsonl",
		},
		Keys: KeysConfig{
			Policy: string(record.KeyPolicyCounter),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the file named by RECORDGRID_CONFIG.
// There is no discovery: if the variable is unset, Load fails and the
// caller decides whether defaults are acceptable.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your recordgrid.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path over [Default]. Files ending
// in .json or .jsonc may carry comments and trailing commas.
//
// Environment variables never override config values. The only
// expansion is ${VAR} and ${VAR:-default} in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}
	// YAML is a superset of JSON, so one decoder serves both.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Data.Path = expandVars(c.Data.Path, vars)
	c.Log.Output = expandVars(c.Log.Output, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, preferring
// vars over the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

var formats = []string{"", "jsonl", "cbor"}

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if c.Data.Path == "" {
		errs = append(errs, errors.New("data.path is required"))
	}
	if !slices.Contains(formats, c.Data.Format) {
		errs = append(errs, fmt.Errorf("data.format must be one of: %v", formats[1:]))
	}
	if _, ok := record.NewKeyGenerator(record.KeyPolicy(c.Keys.Policy), 0); !ok {
		errs = append(errs, fmt.Errorf("keys.policy %q must be one of: counter, ulid", c.Keys.Policy))
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}
	if _, err := c.Schema(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// LogLevel returns the configured level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Schema applies the column overrides to [column.DefaultSchema]. Listed
// fields come first in the listed order, unlisted fields follow in
// default order, and the operation column stays last.
func (c *Config) Schema() (column.Schema, error) {
	defaults := column.DefaultSchema()
	if len(c.Columns) == 0 {
		return defaults, nil
	}

	var operation column.Column
	byField := make(map[record.Field]column.Column)
	var order []record.Field
	for _, definition := range defaults.Columns {
		if definition.IsOperation() {
			operation = definition
			continue
		}
		byField[definition.Field] = definition
		order = append(order, definition.Field)
	}

	var columns []column.Column
	listed := make(map[record.Field]bool)
	for index, override := range c.Columns {
		field := record.Field(override.Field)
		definition, known := byField[field]
		if !known {
			return column.Schema{}, fmt.Errorf("columns[%d]: unknown field %q", index, override.Field)
		}
		if listed[field] {
			return column.Schema{}, fmt.Errorf("columns[%d]: field %q listed twice", index, override.Field)
		}
		listed[field] = true

		if override.Title != "" {
			definition.Title = override.Title
		}
		if override.Kind != "" {
			kind, ok := column.KindByName(override.Kind)
			if !ok {
				return column.Schema{}, fmt.Errorf("columns[%d]: unknown kind %q", index, override.Kind)
			}
			definition.Kind = kind
		}
		if override.Required != nil {
			definition.Required = *override.Required
		}
		if override.Editable != nil {
			definition.Editable = *override.Editable
		}
		if override.Width > 0 {
			definition.Width = override.Width
		}
		columns = append(columns, definition)
	}
	for _, field := range order {
		if !listed[field] {
			columns = append(columns, byField[field])
		}
	}
	columns = append(columns, operation)

	schema := column.Schema{Columns: columns}
	if err := schema.Validate(); err != nil {
		return column.Schema{}, err
	}
	return schema, nil
}
