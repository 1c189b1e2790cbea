package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Basic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t ", ""},
		{"trims and lowercases", "  ABC  ", "abc"},
		{"fullwidth alphanumerics fold", "ＡＢＣ１２３", "abc123"},
		{"ideographic space removed", "丸信　商事", "丸信商事"},
		{"inner whitespace removed", "marushin invoice", "marushininvoice"},
		{"hyphen variants removed", "ミライ-工務店ー", "ミライ工務店"},
		{"middle dot and period removed", "m・s.corp", "mscorp"},
		{"parens removed", "abc(1)（2）", "abc12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_CompanyMarkers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"long form stripped", "ABC株式会社", "abc"},
		{"long form stripped mid-string", "株式会社ミライ工務店", "ミライ工務店"},
		{"yugen stripped", "有限会社マルシン", "マルシン"},
		{"godo stripped", "合同会社テスト", "テスト"},
		{"fullwidth paren abbreviation stripped", "ａｂｃ（株）", "abc"},
		{"halfwidth paren abbreviation stripped", "abc(株)", "abc"},
		{"yugen abbreviation stripped", "マルシン（有）", "マルシン"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

// Long-form and abbreviated entity designators must collapse to the same
// core token so that "ABC株式会社" and "ａｂｃ（株）" compare equal.
func TestNormalize_WidthAndCaseInsensitive(t *testing.T) {
	assert.Equal(t, Normalize("ABC株式会社"), Normalize("ａｂｃ（株）"))
	assert.Equal(t, Normalize("Ａｂｃ株式会社"), Normalize("abc"))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"ABC株式会社",
		"ａｂｃ（株）",
		"ミライ工務店",
		"mirai_invoice.pdf",
		"丸信　商事 ・テスト-ー",
		"（有）マルシン",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestPairKey(t *testing.T) {
	assert.Equal(t, "abc|def", PairKey("ABC", "DEF"))
	assert.Equal(t, "ミライ工務店|mirai_invoicepdf", PairKey("ミライ工務店", "mirai_invoice.pdf"))

	// Order-sensitive: sides are not interchangeable.
	assert.NotEqual(t, PairKey("a", "b"), PairKey("b", "a"))

	// Empty sides still produce a well-formed key.
	assert.Equal(t, "|", PairKey("", ""))
}
