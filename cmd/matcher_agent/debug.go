package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/receipt-matcher/internal/reconcile"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Print the agent's last scan report",
	RunE:  runDebug,
}

func init() {
	rootCmd.AddCommand(debugCmd)
}

func runDebug(_ *cobra.Command, _ []string) error {
	client := newAgentClient()

	var resp struct {
		Debug reconcile.DebugSnapshot `json:"debug"`
	}
	if err := client.message("getDebugInfo", nil, &resp); err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp.Debug, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode scan report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
