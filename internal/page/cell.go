package page

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/receipt-matcher/internal/correlate"
)

// SessionKeyAttr carries the fallback row key stamped onto row elements
// that expose no structural addressing. It lives on the parsed document,
// so it survives re-scans of the same snapshot and disappears with it.
const SessionKeyAttr = "data-matcher-rowkey"

// InjectedControlClass marks elements this program added to the document.
// Text extraction prunes them, so controls injected by one pass never leak
// their captions into the cell text seen by the next pass.
const InjectedControlClass = "matcher-register-btn"

// Cell adapts a goquery cell selection to correlate.Cell.
type Cell struct {
	sel     *goquery.Selection
	adapter Adapter
}

// NewCell wraps sel for row correlation.
func NewCell(sel *goquery.Selection, adapter Adapter) Cell {
	return Cell{sel: sel, adapter: adapter}
}

// Attr returns the named attribute, or "" when absent.
func (c Cell) Attr(name string) string {
	value, _ := c.sel.Attr(name)
	return value
}

// Row returns the nearest row ancestor, or nil when the cell is detached
// from any row-like structure.
func (c Cell) Row() correlate.Row {
	row := c.adapter.RowOf(c.sel)
	if row.Length() == 0 {
		return nil
	}
	return rowElement{sel: row}
}

// Selection returns the underlying goquery selection.
func (c Cell) Selection() *goquery.Selection {
	return c.sel
}

type rowElement struct {
	sel *goquery.Selection
}

func (r rowElement) SessionKey() string {
	key, _ := r.sel.Attr(SessionKeyAttr)
	return key
}

func (r rowElement) SetSessionKey(key string) {
	r.sel.SetAttr(SessionKeyAttr, key)
}
