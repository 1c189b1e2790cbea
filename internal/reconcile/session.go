// Package reconcile orchestrates full re-evaluations of the reconciliation
// table: it owns the session-scoped state (hide flag, debug snapshot,
// fallback row-key counter), runs scan passes, and debounces the change
// signals that trigger them.
package reconcile

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/jonathan/receipt-matcher/internal/annotate"
	"github.com/jonathan/receipt-matcher/internal/correlate"
	"github.com/jonathan/receipt-matcher/internal/dictionary"
	"github.com/jonathan/receipt-matcher/internal/match"
	"github.com/jonathan/receipt-matcher/internal/page"
	"github.com/jonathan/receipt-matcher/internal/pairing"
	"github.com/jonathan/receipt-matcher/internal/storage"
)

// Version identifies the annotation engine in debug output.
const Version = "1.0"

// HideMatchedKey is the fixed persistence key for the hide-matched flag.
const HideMatchedKey = "matcher_hide_matched"

// PairResult is one group's outcome in the debug snapshot. Field names are
// part of the export format.
type PairResult struct {
	Key      string `json:"key"`
	Desc     string `json:"desc"`
	File     string `json:"file"`
	Matched  bool   `json:"matched"`
	RowCount int    `json:"rowCount"`
}

// DebugSnapshot is the most-recent-scan telemetry, overwritten wholesale
// on every pass.
type DebugSnapshot struct {
	Version        string       `json:"version"`
	ScanID         string       `json:"scanId"`
	Timestamp      string       `json:"timestamp"`
	TotalRows      int          `json:"totalRows"`
	FoundDescCells int          `json:"foundDescCells"`
	FoundFileCells int          `json:"foundFileCells"`
	PairingSuccess int          `json:"pairingSuccess"`
	Results        []PairResult `json:"results"`
}

// Session owns one page lifetime's worth of reconciliation state. All
// mutable session state lives here and is injected into collaborators,
// never read from package globals.
type Session struct {
	kv      storage.Store
	adapter page.Adapter

	mu          sync.Mutex
	doc         *goquery.Document
	correlator  *correlate.Correlator
	hideMatched bool
	debug       DebugSnapshot
	verbose     bool
}

// NewSession creates a Session persisting through kv and scanning with the
// given page adapter.
func NewSession(kv storage.Store, adapter page.Adapter) *Session {
	return &Session{
		kv:         kv,
		adapter:    adapter,
		correlator: correlate.New(),
		debug:      DebugSnapshot{Version: Version},
	}
}

// SetVerbose enables per-pass logging.
func (s *Session) SetVerbose(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verbose = v
}

// SetDocument installs a new page snapshot. A fresh snapshot is a DOM
// rebuild: previously stamped fallback keys are gone with the old parse
// tree, so the correlator is replaced along with it.
func (s *Session) SetDocument(doc *goquery.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.correlator = correlate.New()
}

// DocumentHTML renders the current annotated snapshot. Returns "" when no
// document has been installed.
func (s *Session) DocumentHTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ""
	}
	html, err := s.doc.Html()
	if err != nil {
		return ""
	}
	return html
}

// HideMatched returns the in-session hide flag.
func (s *Session) HideMatched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hideMatched
}

// SetHideMatched persists the flag. The caller is expected to follow with
// a Scan so the visible state catches up.
func (s *Session) SetHideMatched(value bool) error {
	s.mu.Lock()
	s.hideMatched = value
	s.mu.Unlock()
	return s.kv.Set(HideMatchedKey, value)
}

// RestoreHideMatched loads the persisted flag into the session, defaulting
// to false when persistence is empty or unavailable.
func (s *Session) RestoreHideMatched() {
	var value bool
	if _, err := s.kv.Get(HideMatchedKey, &value); err != nil {
		value = false
	}
	s.mu.Lock()
	s.hideMatched = value
	s.mu.Unlock()
}

// Debug returns a copy of the latest snapshot.
func (s *Session) Debug() DebugSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.debug
	snap.Results = append([]PairResult(nil), s.debug.Results...)
	return snap
}

// Pairings returns the per-group results of the latest scan.
func (s *Session) Pairings() []PairResult {
	return s.Debug().Results
}

// Scan runs one full reconciliation pass: refresh the dictionary snapshot
// and hide flag, rebuild row groups, evaluate and annotate complete
// pairings, scrub stale annotations from one-sided groups, and overwrite
// the debug snapshot. The pass is skipped when ctx is done (the runtime
// that owns the page has gone away) or when no document is installed.
func (s *Session) Scan(ctx context.Context, dict *dictionary.Store) {
	if ctx.Err() != nil {
		return
	}

	snapshot := map[string]dictionary.Record{}
	if dict != nil {
		snapshot = dict.GetAll()
	}
	s.RestoreHideMatched()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return
	}

	agg := pairing.NewAggregator(s.adapter, s.correlator)
	groups, stats := agg.Scan(s.doc)

	debug := DebugSnapshot{
		Version:        Version,
		ScanID:         uuid.New().String(),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		TotalRows:      len(groups),
		FoundDescCells: stats.DescCells,
		FoundFileCells: stats.FileCells,
		Results:        make([]PairResult, 0, len(groups)),
	}

	for _, group := range groups {
		result := PairResult{
			Key:      group.StructuralKey(),
			Desc:     group.DescText,
			File:     group.FileText,
			RowCount: len(group.Rows),
		}
		if group.Complete() {
			debug.PairingSuccess++
			result.Matched = match.Evaluate(group.DescText, group.FileText, snapshot)
			annotate.Apply(group, result.Matched, s.hideMatched)
		} else {
			// The pairing lost a side, e.g. during a page re-render;
			// whatever an earlier pass drew must go.
			annotate.Clear(group)
		}
		debug.Results = append(debug.Results, result)
	}

	s.debug = debug
	if s.verbose {
		log.Printf("[SCAN] %s: %d groups, %d paired, %d desc / %d file cells",
			debug.ScanID, debug.TotalRows, debug.PairingSuccess,
			debug.FoundDescCells, debug.FoundFileCells)
	}
}
