package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var hideCmd = &cobra.Command{
	Use:   "hide [on|off]",
	Short: "Show or set whether matched rows are hidden",
	Long:  `Without an argument, prints the current hide-matched setting. With "on" or "off", updates it; the agent persists the setting and rescans.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHide,
}

func init() {
	rootCmd.AddCommand(hideCmd)
}

func runHide(_ *cobra.Command, args []string) error {
	client := newAgentClient()

	if len(args) == 0 {
		var resp struct {
			HideMatched bool `json:"hideMatched"`
		}
		if err := client.message("getHideMatched", nil, &resp); err != nil {
			return err
		}
		if resp.HideMatched {
			fmt.Println("Matched rows are hidden.")
		} else {
			fmt.Println("Matched rows are shown.")
		}
		return nil
	}

	var value bool
	switch args[0] {
	case "on":
		value = true
	case "off":
		value = false
	default:
		return fmt.Errorf("argument must be \"on\" or \"off\", got %q", args[0])
	}

	if err := client.message("setHideMatched", map[string]any{"value": value}, nil); err != nil {
		return err
	}
	fmt.Printf("Hide-matched set to %v.\n", value)
	return nil
}
