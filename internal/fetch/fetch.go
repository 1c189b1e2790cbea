// Package fetch acquires HTML snapshots of the reconciliation page, over
// plain HTTP or through a headless browser for the JavaScript-rendered
// table, and detects content changes between snapshots.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ReceiptMatcher/1.0)"

// Result holds one page snapshot.
type Result struct {
	URL        string
	HTML       string
	StatusCode int
	Checksum   string
}

// Error represents an error during snapshot acquisition.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// URL retrieves an HTML snapshot from a URL.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	client := &http.Client{Timeout: opts.Timeout}

	req, err := http.NewRequestWithContext(ctx, "GET", urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}

	result := &Result{
		URL:        urlStr,
		HTML:       string(bodyBytes),
		StatusCode: resp.StatusCode,
		Checksum:   Checksum(string(bodyBytes)),
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return result, nil
}

// File reads an HTML snapshot from disk, for offline one-shot scans.
func File(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{URL: path, Message: "failed to read file", Cause: err}
	}
	return &Result{
		URL:      path,
		HTML:     string(data),
		Checksum: Checksum(string(data)),
	}, nil
}

// Checksum returns the SHA256 hex digest of content, used to tell whether
// a re-fetched snapshot actually changed.
func Checksum(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
