// Package correlate derives a stable logical-row identity from table cells.
// The host page addresses cells through several generations of markup, so
// identity is recovered from whichever structural attribute is present,
// with a session-scoped fallback for rows that carry none.
package correlate

import (
	"fmt"
	"regexp"
)

// structuralAttrs are tried in priority order when extracting a row index
// from a cell's own markup.
var structuralAttrs = []string{"id", "aria-labelledby", "headers"}

// rowIndexPattern extracts the numeric row index embedded in a structural
// attribute value, e.g. "cell__12__desc" or "row__12-13". Ranges such as
// "12-13" identify a logical row that spans physical rows.
var rowIndexPattern = regexp.MustCompile(`__([0-9]+(?:-[0-9]+)?)(?:__|$)`)

// tableScopePattern extracts the table instance identifier so row indexes
// from different tables on the same page never collide.
var tableScopePattern = regexp.MustCompile(`(tb-id_[0-9]+)`)

// defaultTableScope is used when the attribute carries a row index but no
// table identifier.
const defaultTableScope = "tb"

// Cell is the minimal view of a table cell needed to derive row identity.
// It decouples correlation from any concrete document API.
type Cell interface {
	// Attr returns the named attribute value, or "" when absent.
	Attr(name string) string
	// Row returns the nearest enclosing row-like ancestor, or nil.
	Row() Row
}

// Row is a row-like ancestor element that can carry a session-assigned key.
type Row interface {
	// SessionKey returns the key stamped on a previous pass, or "".
	SessionKey() string
	// SetSessionKey stamps key onto the row for reuse on later passes.
	SetSessionKey(key string)
}

// KeyFromAttr parses a structural attribute value into a composite
// "scope:index" row key. It reports false when the value carries no row
// index.
func KeyFromAttr(value string) (string, bool) {
	if value == "" {
		return "", false
	}
	m := rowIndexPattern.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	scope := defaultTableScope
	if tm := tableScopePattern.FindStringSubmatch(value); tm != nil {
		scope = tm[1]
	}
	return scope + ":" + m[1], true
}

// StructuralKey derives a row key from the cell's own attributes only,
// without the ancestor fallback. It reports false when no structural
// attribute yields a key.
func StructuralKey(cell Cell) (string, bool) {
	for _, name := range structuralAttrs {
		if key, ok := KeyFromAttr(cell.Attr(name)); ok {
			return key, true
		}
	}
	return "", false
}

// Correlator assigns row keys. The fallback counter is session-scoped and
// monotonic, so keys minted on earlier passes never collide with keys
// minted later in the same page lifetime.
type Correlator struct {
	nextFallback int64
}

// New creates a Correlator with a fresh fallback counter.
func New() *Correlator {
	return &Correlator{}
}

// RowKey resolves cell to its logical-row key. Structural attributes win;
// otherwise the nearest row ancestor's session key is reused or minted.
// A cell with no row ancestor gets a one-off key that correlates with
// nothing.
func (c *Correlator) RowKey(cell Cell) string {
	if key, ok := StructuralKey(cell); ok {
		return key
	}
	if row := cell.Row(); row != nil {
		if key := row.SessionKey(); key != "" {
			return key
		}
		key := fmt.Sprintf("row-%d", c.mint())
		row.SetSessionKey(key)
		return key
	}
	return fmt.Sprintf("cell-%d", c.mint())
}

func (c *Correlator) mint() int64 {
	n := c.nextFallback
	c.nextFallback++
	return n
}
