// Package config provides configuration loading and validation for the CLI and the server.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/cvmaker/internal/types"
)

// Export modes.
const (
	ModeSnapshot = "snapshot"
	ModeHTML     = "html"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	BaseURL  string `json:"base_url,omitempty"` // Server base URL
	Token    string `json:"token,omitempty"`    // Session token sent as cookie and bearer
	Template string `json:"template,omitempty"` // Template variant for local rendering
	Output   string `json:"output,omitempty"`   // Where exported PDFs are written
	Mode     string `json:"mode,omitempty"`     // snapshot or html
	Verbose  bool   `json:"verbose,omitempty"`
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

// Validate checks that the configuration has valid values.
// Required fields are checked by the commands after merging with flags.
func (c *Config) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config error: 'base_url' must be an absolute http(s) URL, got %q", c.BaseURL)
		}
	}

	switch c.Mode {
	case "", ModeSnapshot, ModeHTML:
	default:
		return fmt.Errorf("config error: 'mode' must be %q or %q, got %q", ModeSnapshot, ModeHTML, c.Mode)
	}

	if c.Template != "" && !types.TemplateVariant(strings.ToLower(c.Template)).IsKnown() {
		return fmt.Errorf("config error: unknown template %q", c.Template)
	}

	if c.Output != "" {
		dir := filepath.Dir(c.Output)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("config error: output directory not found: %s", dir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.Token == "" {
		result.Token = defaults.Token
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.Mode == "" {
		result.Mode = defaults.Mode
	}
	if result.Mode == "" {
		result.Mode = ModeSnapshot
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
