package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/jonathan/receipt-matcher/internal/dictionary"
	"github.com/jonathan/receipt-matcher/internal/fetch"
	"github.com/jonathan/receipt-matcher/internal/page"
	"github.com/jonathan/receipt-matcher/internal/reconcile"
	"github.com/jonathan/receipt-matcher/internal/storage"
)

var (
	scanURL        string
	scanFile       string
	scanStorage    string
	scanOut        string
	scanUseBrowser bool
	scanVerbose    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one reconciliation pass without starting the agent",
	Long:  `Fetch the page once, pair description and receipt cells against the dictionary, and print the scan report as JSON. With --out the annotated HTML is written to a file for inspection.`,
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanURL, "url", "", "URL of the transaction table page")
	scanCmd.Flags().StringVar(&scanFile, "file", "", "Path to a saved HTML snapshot instead of a URL")
	scanCmd.Flags().StringVar(&scanStorage, "storage", "", "Path to the dictionary/settings file")
	scanCmd.Flags().StringVar(&scanOut, "out", "", "Write the annotated HTML to this path")
	scanCmd.Flags().BoolVar(&scanUseBrowser, "use-browser", false, "Render the page in a headless browser before scanning")
	scanCmd.Flags().BoolVar(&scanVerbose, "verbose", false, "Print detailed scan information")
	rootCmd.AddCommand(scanCmd)
}

func runScan(_ *cobra.Command, _ []string) error {
	if scanURL == "" && scanFile == "" {
		return fmt.Errorf("a page source is required (set --url or --file)")
	}
	if scanURL != "" && scanFile != "" {
		return fmt.Errorf("--url and --file are mutually exclusive")
	}

	ctx := context.Background()

	var result *fetch.Result
	var err error
	switch {
	case scanFile != "":
		result, err = fetch.File(scanFile)
	case scanUseBrowser:
		result, err = fetch.WithBrowser(ctx, scanURL, fetch.DefaultTimeout, scanVerbose)
	default:
		result, err = fetch.URL(ctx, scanURL, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.HTML))
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}

	storagePath := scanStorage
	if storagePath == "" {
		storagePath = defaultStoragePath()
	}
	kv := storage.NewFileStore(storagePath)

	session := reconcile.NewSession(kv, page.DefaultAdapter())
	session.SetVerbose(scanVerbose)
	session.RestoreHideMatched()
	session.SetDocument(doc)

	dict := dictionary.New(kv, func() {})
	session.Scan(ctx, dict)

	report, err := json.MarshalIndent(session.Debug(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode scan report: %w", err)
	}
	fmt.Println(string(report))

	if scanOut != "" {
		if err := os.WriteFile(scanOut, []byte(session.DocumentHTML()), 0644); err != nil {
			return fmt.Errorf("failed to write annotated HTML: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Annotated page written to %s\n", scanOut)
	}
	return nil
}
