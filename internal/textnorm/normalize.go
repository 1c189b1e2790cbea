// Package textnorm canonicalizes transaction and attachment text for
// equivalence comparison. Two strings are considered the same transaction
// label when their normalized forms are byte-equal.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// PairSeparator joins the normalized description and attachment sides of a
// dictionary key. The composite key is order-sensitive: the description
// side always comes first.
const PairSeparator = "|"

// halfwidthFold maps the fullwidth ASCII block (U+FF01..U+FF5E) onto its
// halfwidth equivalents. Only that block is folded; halfwidth katakana and
// other width variants are left alone.
var halfwidthFold = runes.Map(func(r rune) rune {
	if r >= '！' && r <= '～' {
		return r - 0xfee0
	}
	return r
})

// companyMarkers are legal-entity designators stripped wherever they occur,
// not only as a prefix or suffix. The parenthesized abbreviations are listed
// in both widths even though halfwidthFold runs first, so the list stays
// complete on its own.
var companyMarkers = []string{
	"株式会社",
	"有限会社",
	"合同会社",
	"（株）",
	"(株)",
	"（有）",
	"(有)",
}

// separatorGlyphs are punctuation runes removed from the canonical form:
// the ASCII hyphen, the fullwidth and halfwidth prolonged sound marks, the
// katakana middle dot, the period, and both paren widths.
var separatorGlyphs = map[rune]bool{
	'-': true,
	'ー': true,
	'ｰ': true,
	'・': true,
	'.': true,
	'（': true,
	'）': true,
	'(': true,
	')': true,
}

// Normalize returns the canonical comparison key for s.
//
// Steps, in order: trim surrounding whitespace, lowercase, fold fullwidth
// ASCII to halfwidth, remove all whitespace (including the ideographic
// space) anywhere in the string, strip legal-entity markers, strip
// separator glyphs. The result may legitimately be empty. Normalize is
// idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(strings.TrimSpace(s))
	s, _, _ = transform.String(halfwidthFold, s)

	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	// Entity markers are stripped before separator glyphs so the
	// parenthesized forms still contain their parens when matched.
	for _, marker := range companyMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}

	s = strings.Map(func(r rune) rune {
		if separatorGlyphs[r] {
			return -1
		}
		return r
	}, s)

	return s
}

// PairKey composes the dictionary lookup key for a description/attachment
// pair. The two sides are not interchangeable.
func PairKey(descText, attrText string) string {
	return Normalize(descText) + PairSeparator + Normalize(attrText)
}
