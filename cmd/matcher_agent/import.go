package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import pairings from a JSON file into the dictionary",
	Long:  `Import pairings exported earlier, or hand-written JSON. Accepts a bare array of entries or an object with a "pairings" field; entries may use legacy field names (description/file/receipts/attachment). Existing pairings are kept.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	client := newAgentClient()

	var resp struct {
		Added int `json:"added"`
	}
	if err := client.message("importPairs", map[string]any{"pairs": json.RawMessage(data)}, &resp); err != nil {
		return err
	}
	fmt.Printf("Imported %d new pairings.\n", resp.Added)
	return nil
}
