package main

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonathan/receipt-matcher/internal/dictionary"
)

var dictAddYes bool

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Inspect and edit the pairing dictionary",
}

var dictListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered pairings",
	RunE:  runDictList,
}

var dictAddCmd = &cobra.Command{
	Use:   "add <description> <attachment>",
	Short: "Register a description/attachment pairing",
	Args:  cobra.ExactArgs(2),
	RunE:  runDictAdd,
}

var dictRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove a pairing by its key (as shown by 'dict list')",
	Args:  cobra.ExactArgs(1),
	RunE:  runDictRemove,
}

func init() {
	dictAddCmd.Flags().BoolVarP(&dictAddYes, "yes", "y", false, "Skip the confirmation prompt")
	dictCmd.AddCommand(dictListCmd)
	dictCmd.AddCommand(dictAddCmd)
	dictCmd.AddCommand(dictRemoveCmd)
	rootCmd.AddCommand(dictCmd)
}

func runDictList(_ *cobra.Command, _ []string) error {
	client := newAgentClient()

	var resp struct {
		Dictionary map[string]dictionary.Record `json:"dictionary"`
	}
	if err := client.get("/dictionary", &resp); err != nil {
		return err
	}

	if len(resp.Dictionary) == 0 {
		fmt.Println("Dictionary is empty.")
		return nil
	}

	keys := make([]string, 0, len(resp.Dictionary))
	for k := range resp.Dictionary {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Key", "Description", "Attachment", "Registered"})
	for _, k := range keys {
		rec := resp.Dictionary[k]
		t.AppendRow(table.Row{k, rec.Desc, rec.Attr, rec.Date})
	}
	t.Render()
	return nil
}

func runDictAdd(_ *cobra.Command, args []string) error {
	desc, attr := args[0], args[1]

	if !dictAddYes {
		fmt.Printf("Register %q and %q as a matching pair? [y/N] ", desc, attr)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	client := newAgentClient()
	if err := client.post("/register", map[string]string{"desc": desc, "attr": attr}, nil); err != nil {
		return err
	}
	fmt.Println("Pairing registered.")
	return nil
}

func runDictRemove(_ *cobra.Command, args []string) error {
	client := newAgentClient()
	if err := client.delete("/dictionary/"+url.PathEscape(args[0]), nil); err != nil {
		return err
	}
	fmt.Println("Pairing removed.")
	return nil
}
