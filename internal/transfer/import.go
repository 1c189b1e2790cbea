// Package transfer handles dictionary import and pairing export payloads.
// Import input has passed through several historical export shapes, so
// each entry accepts a set of legacy field-name aliases that are folded
// into one canonical pair before registration.
package transfer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/receipt-matcher/internal/dictionary"
)

// importSchema accepts either a bare array of entries or an object with a
// "pairings" field, each entry an object. Field-level shape is loose on
// purpose: alias folding decides what is usable.
const importSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "oneOf": [
    {"$ref": "#/definitions/entries"},
    {
      "type": "object",
      "required": ["pairings"],
      "properties": {"pairings": {"$ref": "#/definitions/entries"}}
    }
  ],
  "definitions": {
    "entries": {
      "type": "array",
      "items": {"type": "object"}
    }
  }
}`

// ImportError reports unusable import input. The import aborts without
// partial side effects.
type ImportError struct {
	Message string
	Cause   error
}

func (e *ImportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("import failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("import failed: %s", e.Message)
}

func (e *ImportError) Unwrap() error {
	return e.Cause
}

// rawEntry carries every historically-used field name for the two sides.
type rawEntry struct {
	Desc                 string `json:"desc"`
	Description          string `json:"description"`
	WalletTxnDescription string `json:"wallet_txn_description"`
	Attr                 string `json:"attr"`
	File                 string `json:"file"`
	Receipts             string `json:"receipts"`
	Attachment           string `json:"attachment"`
}

func (r rawEntry) fold() dictionary.Pair {
	return dictionary.Pair{
		Desc: firstNonEmpty(r.Desc, r.Description, r.WalletTxnDescription),
		Attr: firstNonEmpty(r.Attr, r.File, r.Receipts, r.Attachment),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// envelope matches the object form of the import payload.
type envelope struct {
	Pairings []rawEntry `json:"pairings"`
}

// ParseImport validates data and returns the usable pairs in it. Entries
// whose folded desc or attr side is blank are dropped; an input with no
// usable entries at all is an error so the caller can report it instead
// of silently importing nothing.
func ParseImport(data []byte) ([]dictionary.Pair, error) {
	schema := gojsonschema.NewStringLoader(importSchema)
	document := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schema, document)
	if err != nil {
		return nil, &ImportError{Message: "input is not valid JSON", Cause: err}
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, &ImportError{Message: strings.Join(details, "; ")}
	}

	var entries []rawEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, &ImportError{Message: "unrecognized payload shape", Cause: err}
		}
		entries = env.Pairings
	}

	pairs := make([]dictionary.Pair, 0, len(entries))
	for _, entry := range entries {
		pair := entry.fold()
		if strings.TrimSpace(pair.Desc) == "" || strings.TrimSpace(pair.Attr) == "" {
			continue
		}
		pairs = append(pairs, pair)
	}
	if len(pairs) == 0 {
		return nil, &ImportError{Message: "no usable pairs found"}
	}
	return pairs, nil
}
