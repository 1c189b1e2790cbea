// Package match decides whether a description/attachment pairing is
// reconciled.
package match

import (
	"github.com/jonathan/receipt-matcher/internal/dictionary"
	"github.com/jonathan/receipt-matcher/internal/textnorm"
)

// Evaluate reports whether descText and attrText refer to the same
// transaction, given a dictionary snapshot. A pair matches when the
// normalized texts are equal or when the pair was explicitly registered.
//
// A side that normalizes to empty counts as matched: there is nothing
// meaningful to reconcile. Rows with genuinely missing data therefore go
// unflagged, which is the established behavior pending product review.
func Evaluate(descText, attrText string, dict map[string]dictionary.Record) bool {
	nd := textnorm.Normalize(descText)
	na := textnorm.Normalize(attrText)
	if nd == "" || na == "" {
		return true
	}
	if nd == na {
		return true
	}
	_, ok := dict[nd+textnorm.PairSeparator+na]
	return ok
}
