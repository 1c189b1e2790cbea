// Package pairing scans the reconciliation table and groups description
// and attachment cells into logical row groups.
package pairing

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jonathan/receipt-matcher/internal/correlate"
	"github.com/jonathan/receipt-matcher/internal/page"
)

// Group is one logical pairing rebuilt from scratch on every scan. A group
// may span several physical rows (wrapped content), and may hold only one
// side; one-sided groups are kept so stale annotations can be cleared, but
// they are never eligible for matching.
type Group struct {
	Key      string
	Rows     []*goquery.Selection
	DescCell *goquery.Selection
	FileCell *goquery.Selection
	DescText string
	FileText string

	rowNodes map[*html.Node]bool
}

// Complete reports whether both sides of the pairing are present.
func (g *Group) Complete() bool {
	return g.DescCell != nil && g.FileCell != nil
}

// StructuralKey re-derives the row key from whichever cell carries a
// structural attribute, for diagnostics. It returns "" for groups that
// were correlated purely through the ancestor fallback.
func (g *Group) StructuralKey() string {
	for _, cell := range []*goquery.Selection{g.DescCell, g.FileCell} {
		if cell == nil {
			continue
		}
		for _, name := range []string{"id", "aria-labelledby", "headers"} {
			if value, ok := cell.Attr(name); ok {
				if key, found := correlate.KeyFromAttr(value); found {
					return key
				}
			}
		}
	}
	return ""
}

// Stats summarizes one scan for the debug snapshot.
type Stats struct {
	DescCells int
	FileCells int
}

// Aggregator builds row groups from a document.
type Aggregator struct {
	adapter    page.Adapter
	correlator *correlate.Correlator
}

// NewAggregator creates an Aggregator. The correlator is session-owned so
// fallback keys stay unique across scans.
func NewAggregator(adapter page.Adapter, correlator *correlate.Correlator) *Aggregator {
	return &Aggregator{adapter: adapter, correlator: correlator}
}

// Scan locates all description and attachment cells in doc and groups them
// by logical row identity, in first-seen order.
func (a *Aggregator) Scan(doc *goquery.Document) ([]*Group, Stats) {
	groups := map[string]*Group{}
	var order []string

	descCells := a.collectCells(a.adapter.Descriptions(doc))
	fileCells := a.collectCells(a.adapter.Attachments(doc))

	for _, cell := range descCells {
		a.addToGroup(groups, &order, cell, true)
	}
	for _, cell := range fileCells {
		a.addToGroup(groups, &order, cell, false)
	}

	result := make([]*Group, 0, len(order))
	for _, key := range order {
		result = append(result, groups[key])
	}
	return result, Stats{DescCells: len(descCells), FileCells: len(fileCells)}
}

// collectCells ascends each located element to its data cell and
// deduplicates cells addressed by more than one matching element.
func (a *Aggregator) collectCells(els *goquery.Selection) []*goquery.Selection {
	seen := map[*html.Node]bool{}
	var cells []*goquery.Selection
	els.Each(func(_ int, el *goquery.Selection) {
		cell := a.adapter.CellOf(el)
		if cell.Length() == 0 {
			return
		}
		node := cell.Nodes[0]
		if seen[node] {
			return
		}
		seen[node] = true
		cells = append(cells, cell)
	})
	return cells
}

func (a *Aggregator) addToGroup(groups map[string]*Group, order *[]string, cell *goquery.Selection, isDesc bool) {
	key := a.correlator.RowKey(page.NewCell(cell, a.adapter))
	group, ok := groups[key]
	if !ok {
		group = &Group{Key: key, rowNodes: map[*html.Node]bool{}}
		groups[key] = group
		*order = append(*order, key)
	}

	if row := a.adapter.RowOf(cell); row.Length() > 0 {
		node := row.Nodes[0]
		if !group.rowNodes[node] {
			group.rowNodes[node] = true
			group.Rows = append(group.Rows, row)
		}
	}

	if isDesc {
		group.DescCell = cell
		group.DescText = page.ExtractText(cell)
	} else {
		group.FileCell = cell
		group.FileText = page.ExtractText(cell)
	}
}
