package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"page_url": "https://secure.example.com/wallet_txns",
		"addr": "127.0.0.1:8710",
		"poll_interval_sec": 5,
		"debounce_ms": 500,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://secure.example.com/wallet_txns", cfg.PageURL)
	assert.Equal(t, "127.0.0.1:8710", cfg.Addr)
	assert.Equal(t, 5, cfg.PollIntervalSec)
	assert.Equal(t, 500, cfg.DebounceMillis)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_MutuallyExclusive(t *testing.T) {
	cfg := &Config{
		PageURL:  "https://example.com/wallet_txns",
		PageFile: "snapshot.html",
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestValidate_NegativeValues(t *testing.T) {
	cfg := &Config{PollIntervalSec: -1}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "poll_interval_sec")

	cfg = &Config{DebounceMillis: -100}
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "debounce_ms")
}

func TestValidate_PageFileMissing(t *testing.T) {
	cfg := &Config{PageFile: filepath.Join(t.TempDir(), "absent.html")}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "page file not found")
}

func TestValidate_PageFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0644))

	cfg := &Config{PageFile: path}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Empty(t *testing.T) {
	cfg := &Config{}
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{
		PageURL: "https://example.com/wallet_txns",
		Verbose: true,
	}
	defaults := Config{
		PageURL:         "https://default.example.com",
		Addr:            "127.0.0.1:8710",
		StoragePath:     "/var/lib/matcher/store.json",
		PollIntervalSec: 10,
		DebounceMillis:  1500,
	}

	merged := cfg.MergeWithDefaults(defaults)

	// Explicit values survive the merge.
	assert.Equal(t, "https://example.com/wallet_txns", merged.PageURL)
	assert.True(t, merged.Verbose)

	// Empty fields pick up defaults.
	assert.Equal(t, "127.0.0.1:8710", merged.Addr)
	assert.Equal(t, "/var/lib/matcher/store.json", merged.StoragePath)
	assert.Equal(t, 10, merged.PollIntervalSec)
	assert.Equal(t, 1500, merged.DebounceMillis)
}

func TestMergeWithDefaults_SelectorOverrides(t *testing.T) {
	cfg := &Config{DescriptionSelector: `[headers*="custom_desc"]`}
	defaults := Config{
		DescriptionSelector: "default-desc",
		AttachmentSelector:  "default-attr",
	}

	merged := cfg.MergeWithDefaults(defaults)
	assert.Equal(t, `[headers*="custom_desc"]`, merged.DescriptionSelector)
	assert.Equal(t, "default-attr", merged.AttachmentSelector)
}

func TestLoadConfig_RelativePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"addr": "x"}`), 0644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, err := LoadConfig("config.json")
	require.NoError(t, err)
	assert.Equal(t, "x", cfg.Addr)
}
