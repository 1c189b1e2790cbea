// Package page isolates the host page's markup conventions. The selector
// sets here are the brittle, page-coupled boundary: when the accounting
// app's markup changes, only this adapter needs updating, never the
// correlation, evaluation, or annotation logic.
package page

import "github.com/PuerkitoBio/goquery"

// Adapter locates the role-bearing elements of the reconciliation table.
type Adapter struct {
	// DescriptionSelector matches elements belonging to the transaction
	// description column.
	DescriptionSelector string
	// AttachmentSelector matches elements belonging to the receipt /
	// attachment column.
	AttachmentSelector string
	// CellSelector matches the enclosing data-cell ancestor.
	CellSelector string
	// RowSelector matches the enclosing row ancestor.
	RowSelector string
}

// DefaultAdapter returns the selector set for the current generation of
// the host page's markup. Older table versions address cells through
// headers attributes, newer ones through ids or icon aria-labels, so each
// role carries all three.
func DefaultAdapter() Adapter {
	return Adapter{
		DescriptionSelector: `[headers*="wallet_txn_description"], [id*="wallet_txn_description"], svg[aria-label="明細の内容"]`,
		AttachmentSelector:  `[headers*="receipts"], [id*="receipts"], svg[aria-label="発行元"]`,
		CellSelector:        `td, [role="gridcell"]`,
		RowSelector:         `tr, [role="row"]`,
	}
}

// Descriptions returns all description-role elements in doc.
func (a Adapter) Descriptions(doc *goquery.Document) *goquery.Selection {
	return doc.Find(a.DescriptionSelector)
}

// Attachments returns all attachment-role elements in doc.
func (a Adapter) Attachments(doc *goquery.Document) *goquery.Selection {
	return doc.Find(a.AttachmentSelector)
}

// CellOf ascends from el to its enclosing data cell. The returned
// selection is empty for malformed markup with no cell ancestor.
func (a Adapter) CellOf(el *goquery.Selection) *goquery.Selection {
	return el.Closest(a.CellSelector)
}

// RowOf ascends from cell to its enclosing row.
func (a Adapter) RowOf(cell *goquery.Selection) *goquery.Selection {
	return cell.Closest(a.RowSelector)
}
