// Package config provides configuration loading and validation for the CLI and the server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/role-recommender/internal/artifacts"
	"github.com/jonathan/role-recommender/internal/types"
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, environment variables or CLI flags.
type Config struct {
	// Artifacts
	DataDir        string                     `json:"data_dir,omitempty"`        // Directory holding the training artifacts
	QuestionMap    string                     `json:"question_map,omitempty"`    // Long-to-short question map file
	LabelSets      map[string]artifacts.Paths `json:"label_sets,omitempty"`      // Per label set artifact path overrides
	StrictDefaults bool                       `json:"strict_defaults,omitempty"` // Reject benchmark values outside their domain
	ONNXLibrary    string                     `json:"onnx_library,omitempty"`    // onnxruntime shared library path

	// Server
	Port           int      `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
	DatabaseURL    string   `json:"database_url,omitempty"` // PostgreSQL connection URL for request history

	// Logging
	LogLevel  string `json:"log_level,omitempty" validate:"omitempty,oneof=trace debug info warn error"`
	LogFormat string `json:"log_format,omitempty" validate:"omitempty,oneof=json console"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:   "data",
		Port:      8080,
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables when they are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("RR_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("RR_QUESTION_MAP"); v != "" {
		c.QuestionMap = v
	}
	if v := os.Getenv("RR_ONNX_LIBRARY"); v != "" {
		c.ONNXLibrary = v
	}
	if v := os.Getenv("RR_STRICT_DEFAULTS"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config error: RR_STRICT_DEFAULTS: %w", err)
		}
		c.StrictDefaults = strict
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: PORT: %w", err)
		}
		c.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, o)
			}
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = strings.ToLower(v)
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	for key := range c.LabelSets {
		if _, err := types.ParseLabelSet(key); err != nil {
			return fmt.Errorf("config error: label_sets: %w", err)
		}
	}

	if c.DataDir != "" {
		info, err := os.Stat(c.DataDir)
		if err == nil && !info.IsDir() {
			return fmt.Errorf("config error: data_dir is not a directory: %s", c.DataDir)
		}
	}

	if c.ONNXLibrary != "" {
		if _, err := os.Stat(c.ONNXLibrary); os.IsNotExist(err) {
			return fmt.Errorf("config error: onnx library not found: %s", c.ONNXLibrary)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DataDir == "" {
		result.DataDir = defaults.DataDir
	}
	if result.QuestionMap == "" {
		result.QuestionMap = defaults.QuestionMap
	}
	if result.ONNXLibrary == "" {
		result.ONNXLibrary = defaults.ONNXLibrary
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}
	if len(result.LabelSets) == 0 {
		result.LabelSets = defaults.LabelSets
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags and environment should always win for bools)

	return result
}

// CatalogConfig returns the artifact catalog settings.
func (c *Config) CatalogConfig() artifacts.CatalogConfig {
	cfg := artifacts.CatalogConfig{
		DataDir:        c.DataDir,
		QuestionMap:    c.QuestionMap,
		StrictDefaults: c.StrictDefaults,
		ONNXLibrary:    c.ONNXLibrary,
	}
	if len(c.LabelSets) > 0 {
		cfg.LabelSets = make(map[types.LabelSet]artifacts.Paths, len(c.LabelSets))
		for key, paths := range c.LabelSets {
			if ls, err := types.ParseLabelSet(key); err == nil {
				cfg.LabelSets[ls] = paths
			}
		}
	}
	return cfg
}

// Resolve loads the optional config file, merges it over the built-in defaults,
// applies environment overrides and validates the result.
func Resolve(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	merged := cfg.MergeWithDefaults(Default())
	if err := merged.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}
