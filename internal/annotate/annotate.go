// Package annotate applies the visual verdict of a scan onto the document:
// mismatch markers, hide-when-matched state, and the inline registration
// control. Application is idempotent; every pass clears what the previous
// pass left behind before re-applying.
package annotate

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/receipt-matcher/internal/page"
	"github.com/jonathan/receipt-matcher/internal/pairing"
)

// CSS classes and attributes applied to annotated rows. These are the
// public surface the stylesheet and the page script bind to. The register
// button carries page.InjectedControlClass so text extraction prunes it on
// later passes.
const (
	ClassMismatch       = "matcher-row-mismatch"
	ClassMismatchTop    = "matcher-row-mismatch-top"
	ClassMismatchBottom = "matcher-row-mismatch-bottom"
	ClassHiddenRow      = "matcher-hidden-row"
	ClassRegisterButton = page.InjectedControlClass
	AttrMatched         = "data-is-matched"
)

// RegisterButtonLabel is the inline control's caption.
const RegisterButtonLabel = "一致登録"

// Apply renders the verdict for one row group. Unmatched groups get
// mismatch markers on every row, distinct markers on the first and last
// rows to delimit multi-row blocks, and exactly one registration button on
// the attachment cell. Matched groups are tagged as matched and, when
// hideMatched is set, visually hidden; the rows themselves are never
// removed, so node identity survives.
func Apply(group *pairing.Group, matched bool, hideMatched bool) {
	Clear(group)

	if matched {
		for _, row := range group.Rows {
			row.SetAttr(AttrMatched, "true")
			if hideMatched {
				row.AddClass(ClassHiddenRow)
			}
		}
		return
	}

	// Physical rows arrive in document order, which is how the table
	// renders them, so first and last delimit the visual block.
	for i, row := range group.Rows {
		row.AddClass(ClassMismatch)
		if i == 0 {
			row.AddClass(ClassMismatchTop)
		}
		if i == len(group.Rows)-1 {
			row.AddClass(ClassMismatchBottom)
		}
		row.SetAttr(AttrMatched, "false")
	}

	if group.FileCell != nil {
		injectRegisterButton(group.FileCell, group.DescText, group.FileText)
	}
}

// Clear removes every marker and injected control a previous pass may have
// left on the group. Safe to call on never-annotated rows; also used to
// scrub one-sided groups whose pairing disappeared in a page re-render.
func Clear(group *pairing.Group) {
	for _, row := range group.Rows {
		clearRow(row)
	}
	for _, cell := range []*goquery.Selection{group.DescCell, group.FileCell} {
		if cell != nil {
			cell.Find("." + ClassRegisterButton).Remove()
		}
	}
}

func clearRow(row *goquery.Selection) {
	row.RemoveClass(ClassMismatch, ClassMismatchTop, ClassMismatchBottom, ClassHiddenRow)
	row.RemoveAttr(AttrMatched)
	row.Find("." + ClassRegisterButton).Remove()
}

// injectRegisterButton appends the inline "register as match" control to
// the attachment cell. The raw texts ride along as data attributes so the
// page script can submit them verbatim.
func injectRegisterButton(cell *goquery.Selection, descText, fileText string) {
	markup := fmt.Sprintf(
		`<button type="button" class=%q data-matcher-desc="%s" data-matcher-attr="%s">%s</button>`,
		ClassRegisterButton,
		html.EscapeString(descText),
		html.EscapeString(fileText),
		RegisterButtonLabel,
	)
	cell.AppendHtml(markup)

	// The button is absolutely positioned inside the cell.
	style, _ := cell.Attr("style")
	if !strings.Contains(style, "position:") {
		if style != "" && !strings.HasSuffix(style, ";") {
			style += ";"
		}
		cell.SetAttr("style", style+"position:relative")
	}
}
