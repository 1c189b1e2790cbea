package page

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// labelSelector matches the nested element that carries only the
// human-readable label, when the markup provides one.
const labelSelector = `.vb-text, [class*="Text"], [class*="Label"]`

// ExtractText returns the display text of a cell. It prefers a dedicated
// label element; otherwise it concatenates all text nodes while skipping
// anything nested inside svg markup, since icons can carry decorative text
// that must not pollute the comparison. Elements injected by an earlier
// annotation pass are pruned the same way: the cell must read identically
// whether or not it currently carries a register control.
func ExtractText(cell *goquery.Selection) string {
	if cell == nil || cell.Length() == 0 {
		return ""
	}
	if label := cell.Find(labelSelector); label.Length() > 0 {
		return strings.TrimSpace(label.First().Text())
	}

	var b strings.Builder
	for _, node := range cell.Nodes {
		collectText(node, &b)
	}
	return strings.TrimSpace(b.String())
}

// collectText appends the text content of n and its descendants to b,
// pruning svg subtrees and injected controls entirely.
func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		if strings.EqualFold(n.Data, "svg") || hasClass(n, InjectedControlClass) {
			return
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, b)
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
