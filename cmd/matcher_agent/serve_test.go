package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/receipt-matcher/internal/annotate"
	"github.com/jonathan/receipt-matcher/internal/page"
	"github.com/jonathan/receipt-matcher/internal/storage"
)

func resetServeFlags() {
	serveConfig = ""
	serveListen = ""
	serveURL = ""
	serveFile = ""
	servePollInterval = 0
	serveDebounceMS = 0
	serveStorage = ""
	serveDescSelector = ""
	serveAttrSelector = ""
	serveUseBrowser = false
	serveVerbose = false
}

func TestResolveServeConfig_Defaults(t *testing.T) {
	resetServeFlags()
	t.Cleanup(resetServeFlags)
	serveURL = "https://example.com/wallet_txns"

	cfg, err := resolveServeConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8710", cfg.Addr)
	assert.Equal(t, 10, cfg.PollIntervalSec)
	assert.Equal(t, 1500, cfg.DebounceMillis)
	assert.NotEmpty(t, cfg.StoragePath)
}

func TestResolveServeConfig_RequiresPageSource(t *testing.T) {
	resetServeFlags()
	t.Cleanup(resetServeFlags)

	_, err := resolveServeConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page source is required")
}

func TestResolveServeConfig_FlagsWinOverConfigFile(t *testing.T) {
	resetServeFlags()
	t.Cleanup(resetServeFlags)

	content := `{
		"page_url": "https://config.example.com",
		"addr": "0.0.0.0:9000",
		"debounce_ms": 300
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	serveConfig = path
	serveURL = "https://flag.example.com"

	cfg, err := resolveServeConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example.com", cfg.PageURL, "flag overrides config file")
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr, "config file fills unset flags")
	assert.Equal(t, 300, cfg.DebounceMillis)
}

func TestNewRuntime_DictionaryMutationScansImmediately(t *testing.T) {
	// An hour-long debounce proves the mutation path does not go through
	// the scheduler: the verdict must flip before any window could elapse.
	rt := newRuntime(context.Background(), storage.NewMemoryStore(), page.DefaultAdapter(), time.Hour, false)
	defer rt.scheduler.Stop()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<table><tr>
			<td id="tb-id_1__1__wallet_txn_description">丸信商事</td>
			<td id="tb-id_1__1__receipts">marushin.pdf</td>
		</tr></table>`))
	require.NoError(t, err)
	rt.session.SetDocument(doc)

	rt.rescan()
	assert.True(t, doc.Find("tr").HasClass(annotate.ClassMismatch))

	require.NoError(t, rt.dict.AddOne("丸信商事", "marushin.pdf"))

	assert.False(t, doc.Find("tr").HasClass(annotate.ClassMismatch))
	assert.True(t, rt.session.Pairings()[0].Matched)
	assert.False(t, rt.scheduler.Pending())
}

func TestResolveServeConfig_MutuallyExclusiveSources(t *testing.T) {
	resetServeFlags()
	t.Cleanup(resetServeFlags)

	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0644))
	serveURL = "https://example.com"
	serveFile = path

	_, err := resolveServeConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}
