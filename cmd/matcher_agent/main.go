// Package main provides the entry point for the receipt matcher agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "matcher_agent",
	Short: "Transaction/receipt pairing agent",
	Long:  "Matcher agent watches a transaction table page, pairs description cells with receipt cells, marks mismatches, and maintains a user dictionary of confirmed pairings.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
