// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Page source
	PageURL  string `json:"page_url,omitempty"`  // URL of the transaction table page
	PageFile string `json:"page_file,omitempty"` // Path to a saved HTML snapshot (alternative to page_url)

	// Daemon
	Addr            string `json:"addr,omitempty"`             // Listen address for the agent server
	PollIntervalSec int    `json:"poll_interval_sec,omitempty"` // Seconds between page snapshots
	DebounceMillis  int    `json:"debounce_ms,omitempty"`      // Quiet window before a rescan fires

	// Storage
	StoragePath string `json:"storage_path,omitempty"` // Path to the persisted dictionary/settings file
	ExportDir   string `json:"export_dir,omitempty"`   // Directory for exported pairing files

	// Selector overrides; empty values keep the built-in selectors.
	DescriptionSelector string `json:"description_selector,omitempty"`
	AttachmentSelector  string `json:"attachment_selector,omitempty"`

	// Behavior
	APIKey     string `json:"api_key,omitempty"`     // Shared key required on agent requests when set
	UseBrowser bool   `json:"use_browser,omitempty"` // Use headless browser for script-rendered pages
	Verbose    bool   `json:"verbose,omitempty"`     // Print detailed scan information
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
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.PageURL != "" && c.PageFile != "" {
		return fmt.Errorf("config error: 'page_url' and 'page_file' are mutually exclusive")
	}

	// Validate numeric ranges
	if c.PollIntervalSec < 0 {
		return fmt.Errorf("config error: 'poll_interval_sec' must be non-negative")
	}
	if c.DebounceMillis < 0 {
		return fmt.Errorf("config error: 'debounce_ms' must be non-negative")
	}

	// Validate file paths exist (if specified)
	if c.PageFile != "" {
		if _, err := os.Stat(c.PageFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: page file not found: %s", c.PageFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.PageURL == "" {
		result.PageURL = defaults.PageURL
	}
	if result.PageFile == "" {
		result.PageFile = defaults.PageFile
	}
	if result.Addr == "" {
		result.Addr = defaults.Addr
	}
	if result.StoragePath == "" {
		result.StoragePath = defaults.StoragePath
	}
	if result.ExportDir == "" {
		result.ExportDir = defaults.ExportDir
	}
	if result.DescriptionSelector == "" {
		result.DescriptionSelector = defaults.DescriptionSelector
	}
	if result.AttachmentSelector == "" {
		result.AttachmentSelector = defaults.AttachmentSelector
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}

	// Int fields: use default if zero
	if result.PollIntervalSec == 0 {
		result.PollIntervalSec = defaults.PollIntervalSec
	}
	if result.DebounceMillis == 0 {
		result.DebounceMillis = defaults.DebounceMillis
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
