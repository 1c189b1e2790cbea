package annotate

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/receipt-matcher/internal/correlate"
	"github.com/jonathan/receipt-matcher/internal/page"
	"github.com/jonathan/receipt-matcher/internal/pairing"
)

func scanOne(t *testing.T, body string) (*goquery.Document, *pairing.Group) {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	agg := pairing.NewAggregator(page.DefaultAdapter(), correlate.New())
	groups, _ := agg.Scan(doc)
	require.Len(t, groups, 1)
	return doc, groups[0]
}

const singlePair = `
	<table>
		<tr>
			<td id="tb-id_1__1__wallet_txn_description">丸信商事</td>
			<td id="tb-id_1__1__receipts">marushin.pdf</td>
		</tr>
	</table>`

const multiRowPair = `
	<table>
		<tr><td id="tb-id_1__2-3__wallet_txn_description">説明</td></tr>
		<tr><td id="tb-id_1__2-3__receipts">file.pdf</td></tr>
	</table>`

func TestApply_Unmatched(t *testing.T) {
	doc, group := scanOne(t, singlePair)

	Apply(group, false, false)

	row := doc.Find("tr")
	assert.True(t, row.HasClass(ClassMismatch))
	assert.True(t, row.HasClass(ClassMismatchTop))
	assert.True(t, row.HasClass(ClassMismatchBottom))
	matched, _ := row.Attr(AttrMatched)
	assert.Equal(t, "false", matched)

	btn := doc.Find("." + ClassRegisterButton)
	require.Equal(t, 1, btn.Length())
	descAttr, _ := btn.Attr("data-matcher-desc")
	fileAttr, _ := btn.Attr("data-matcher-attr")
	assert.Equal(t, "丸信商事", descAttr)
	assert.Equal(t, "marushin.pdf", fileAttr)
	assert.Equal(t, RegisterButtonLabel, btn.Text())

	// The button lands on the attachment cell, not the description cell.
	assert.Equal(t, 1, doc.Find(`td[id$="receipts"] .`+ClassRegisterButton).Length())
}

func TestApply_UnmatchedIsIdempotent(t *testing.T) {
	doc, group := scanOne(t, singlePair)

	Apply(group, false, false)
	Apply(group, false, false)

	assert.Equal(t, 1, doc.Find("."+ClassRegisterButton).Length(), "re-applying must not duplicate the control")
}

func TestApply_MultiRowDelimiters(t *testing.T) {
	doc, group := scanOne(t, multiRowPair)

	Apply(group, false, false)

	rows := doc.Find("tr")
	require.Equal(t, 2, rows.Length())
	first := rows.First()
	last := rows.Last()

	assert.True(t, first.HasClass(ClassMismatch))
	assert.True(t, first.HasClass(ClassMismatchTop))
	assert.False(t, first.HasClass(ClassMismatchBottom))
	assert.True(t, last.HasClass(ClassMismatchBottom))
	assert.False(t, last.HasClass(ClassMismatchTop))
}

func TestApply_Matched(t *testing.T) {
	doc, group := scanOne(t, singlePair)

	Apply(group, true, false)

	row := doc.Find("tr")
	matched, _ := row.Attr(AttrMatched)
	assert.Equal(t, "true", matched)
	assert.False(t, row.HasClass(ClassMismatch))
	assert.False(t, row.HasClass(ClassHiddenRow))
	assert.Zero(t, doc.Find("."+ClassRegisterButton).Length())
}

func TestApply_MatchedHidden(t *testing.T) {
	doc, group := scanOne(t, singlePair)

	Apply(group, true, true)

	row := doc.Find("tr")
	assert.True(t, row.HasClass(ClassHiddenRow))
	// Presentation-only: the row node is still in the document.
	assert.Equal(t, 1, doc.Find("tr").Length())
}

func TestApply_VerdictFlipsCleanly(t *testing.T) {
	doc, group := scanOne(t, singlePair)

	Apply(group, false, false)
	Apply(group, true, true)

	row := doc.Find("tr")
	assert.False(t, row.HasClass(ClassMismatch))
	assert.True(t, row.HasClass(ClassHiddenRow))
	assert.Zero(t, doc.Find("."+ClassRegisterButton).Length())

	Apply(group, false, false)
	assert.True(t, row.HasClass(ClassMismatch))
	assert.False(t, row.HasClass(ClassHiddenRow))
	assert.Equal(t, 1, doc.Find("."+ClassRegisterButton).Length())
}

func TestClear_ScrubsStaleState(t *testing.T) {
	doc, group := scanOne(t, singlePair)

	Apply(group, false, false)
	Clear(group)

	row := doc.Find("tr")
	assert.False(t, row.HasClass(ClassMismatch))
	_, has := row.Attr(AttrMatched)
	assert.False(t, has)
	assert.Zero(t, doc.Find("."+ClassRegisterButton).Length())
}
