package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/receipt-matcher/internal/reconcile"
	"github.com/jonathan/receipt-matcher/internal/transfer"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current pairings to a timestamped JSON file",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "Directory to write the export into")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	client := newAgentClient()

	var resp struct {
		Pairings []reconcile.PairResult `json:"pairings"`
	}
	if err := client.message("getPairings", nil, &resp); err != nil {
		return err
	}
	if len(resp.Pairings) == 0 {
		return fmt.Errorf("nothing to export: the agent has no pairings yet")
	}

	path, err := transfer.WriteExport(exportDir, resp.Pairings, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d pairings to %s\n", len(resp.Pairings), path)
	return nil
}
