package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/jonathan/receipt-matcher/internal/config"
	"github.com/jonathan/receipt-matcher/internal/dictionary"
	"github.com/jonathan/receipt-matcher/internal/fetch"
	"github.com/jonathan/receipt-matcher/internal/page"
	"github.com/jonathan/receipt-matcher/internal/reconcile"
	"github.com/jonathan/receipt-matcher/internal/server"
	"github.com/jonathan/receipt-matcher/internal/storage"
)

var (
	serveConfig       string
	serveListen       string
	serveURL          string
	serveFile         string
	servePollInterval int
	serveDebounceMS   int
	serveStorage      string
	serveDescSelector string
	serveAttrSelector string
	serveUseBrowser   bool
	serveVerbose      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the matcher agent",
	Long:  `Start the agent daemon: it polls the transaction page for changes, reconciles pairings against the dictionary after each quiet period, and exposes the HTTP API used by the other commands and the annotated page.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to JSON config file")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default 127.0.0.1:8710)")
	serveCmd.Flags().StringVar(&serveURL, "url", "", "URL of the transaction table page")
	serveCmd.Flags().StringVar(&serveFile, "file", "", "Path to a saved HTML snapshot instead of a URL")
	serveCmd.Flags().IntVar(&servePollInterval, "poll-interval", 0, "Seconds between page snapshots (default 10)")
	serveCmd.Flags().IntVar(&serveDebounceMS, "debounce-ms", 0, "Quiet window in milliseconds before a rescan (default 1500)")
	serveCmd.Flags().StringVar(&serveStorage, "storage", "", "Path to the dictionary/settings file")
	serveCmd.Flags().StringVar(&serveDescSelector, "desc-selector", "", "Override the description cell selector")
	serveCmd.Flags().StringVar(&serveAttrSelector, "attr-selector", "", "Override the attachment cell selector")
	serveCmd.Flags().BoolVar(&serveUseBrowser, "use-browser", false, "Render the page in a headless browser before scanning")
	serveCmd.Flags().BoolVar(&serveVerbose, "verbose", false, "Print detailed scan information")
	rootCmd.AddCommand(serveCmd)
}

// resolveServeConfig layers flag values over the config file over the
// built-in defaults. Flags win where set.
func resolveServeConfig() (config.Config, error) {
	cfg := config.Config{
		PageURL:             serveURL,
		PageFile:            serveFile,
		Addr:                serveListen,
		PollIntervalSec:     servePollInterval,
		DebounceMillis:      serveDebounceMS,
		StoragePath:         serveStorage,
		DescriptionSelector: serveDescSelector,
		AttachmentSelector:  serveAttrSelector,
		APIKey:              os.Getenv("MATCHER_API_KEY"),
		UseBrowser:          serveUseBrowser,
		Verbose:             serveVerbose,
	}

	if serveConfig != "" {
		fileCfg, err := config.LoadConfig(serveConfig)
		if err != nil {
			return cfg, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
		cfg.UseBrowser = cfg.UseBrowser || fileCfg.UseBrowser
		cfg.Verbose = cfg.Verbose || fileCfg.Verbose
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		Addr:            "127.0.0.1:8710",
		PollIntervalSec: int(fetch.DefaultPollInterval / time.Second),
		DebounceMillis:  int(reconcile.DefaultDebounceWindow / time.Millisecond),
		StoragePath:     defaultStoragePath(),
	})

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.PageURL == "" && cfg.PageFile == "" {
		return cfg, fmt.Errorf("a page source is required (set --url or --file)")
	}
	return cfg, nil
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "matcher_store.json"
	}
	return filepath.Join(home, ".matcher", "store.json")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := resolveServeConfig()
	if err != nil {
		return err
	}

	kv := storage.NewFileStore(cfg.StoragePath)

	adapter := page.DefaultAdapter()
	if cfg.DescriptionSelector != "" {
		adapter.DescriptionSelector = cfg.DescriptionSelector
	}
	if cfg.AttachmentSelector != "" {
		adapter.AttachmentSelector = cfg.AttachmentSelector
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt := newRuntime(ctx, kv, adapter, time.Duration(cfg.DebounceMillis)*time.Millisecond, cfg.Verbose)
	defer rt.scheduler.Stop()

	snapshot := newSnapshotter(cfg)
	poller := fetch.NewPoller(snapshot, time.Duration(cfg.PollIntervalSec)*time.Second, func(r *fetch.Result) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(r.HTML))
		if err != nil {
			log.Printf("Failed to parse page snapshot: %v", err)
			return
		}
		rt.session.SetDocument(doc)
		rt.scheduler.Signal()
	}, cfg.Verbose)
	go poller.Run(ctx)

	srv, err := server.New(server.Config{
		Addr:    cfg.Addr,
		APIKey:  cfg.APIKey,
		Session: rt.session,
		Dict:    rt.dict,
		Rescan:  rt.rescan,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// runtime bundles one agent process's live collaborators.
type runtime struct {
	session   *reconcile.Session
	dict      *dictionary.Store
	scheduler *reconcile.Scheduler
	rescan    func()
}

// newRuntime wires the session, dictionary and scheduler. Dictionary
// mutations and server-driven state changes scan immediately, so their
// effect is visible by the time the mutating call returns; only page-change
// signals go through the debounce window.
func newRuntime(ctx context.Context, kv storage.Store, adapter page.Adapter, debounce time.Duration, verbose bool) *runtime {
	session := reconcile.NewSession(kv, adapter)
	session.SetVerbose(verbose)
	session.RestoreHideMatched()

	var dict *dictionary.Store
	rescan := func() { session.Scan(ctx, dict) }
	scheduler := reconcile.NewScheduler(debounce, rescan)
	dict = dictionary.New(kv, rescan)

	return &runtime{session: session, dict: dict, scheduler: scheduler, rescan: rescan}
}

// newSnapshotter picks the page source: a local snapshot file, a plain
// HTTP fetch, or a headless browser render for script-built tables.
func newSnapshotter(cfg config.Config) fetch.Snapshotter {
	if cfg.PageFile != "" {
		return func(context.Context) (*fetch.Result, error) {
			return fetch.File(cfg.PageFile)
		}
	}
	if cfg.UseBrowser {
		return func(ctx context.Context) (*fetch.Result, error) {
			return fetch.WithBrowser(ctx, cfg.PageURL, fetch.DefaultTimeout, cfg.Verbose)
		}
	}
	return func(ctx context.Context) (*fetch.Result, error) {
		return fetch.URL(ctx, cfg.PageURL, nil)
	}
}
