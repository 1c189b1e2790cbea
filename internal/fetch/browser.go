// Package fetch - browser.go provides headless browser rendering for the
// JavaScript-rendered reconciliation table.
package fetch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
)

// renderSettle gives the table's scripts time to populate rows after the
// document is ready.
const renderSettle = 3 * time.Second

// WithBrowser renders the page in a headless browser and returns the
// rendered HTML. Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, url string, timeout time.Duration, verbose bool) (*Result, error) {
	if verbose {
		log.Printf("[BROWSER] Starting headless browser for: %s", url)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(renderSettle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("browser rendering failed: %w", err)
	}

	if verbose {
		log.Printf("[BROWSER] Rendered HTML: %d bytes", len(html))
	}

	return &Result{URL: url, HTML: html, Checksum: Checksum(html)}, nil
}

// BrowserSimple is a simplified version that uses the default timeout.
func BrowserSimple(ctx context.Context, url string, verbose bool) (*Result, error) {
	return WithBrowser(ctx, url, DefaultTimeout, verbose)
}
