package transfer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// exportPrefix names exported pairing files.
const exportPrefix = "pairings"

// ExportFilename returns the timestamped export file name, e.g.
// "pairings_20260828_153000.json".
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("%s_%s.json", exportPrefix, t.Format("20060102_150405"))
}

// WriteExport writes results as pretty-printed JSON into dir under a
// timestamped name and returns the full path.
func WriteExport(dir string, results any, now time.Time) (string, error) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal pairings: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, ExportFilename(now))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
