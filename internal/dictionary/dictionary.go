// Package dictionary holds the user-curated set of confirmed equivalences
// between transaction description text and attachment text. Records are
// keyed by the normalized pair key and live until the user deletes them.
package dictionary

import (
	"strings"
	"time"

	"github.com/jonathan/receipt-matcher/internal/storage"
	"github.com/jonathan/receipt-matcher/internal/textnorm"
)

// StorageKey is the fixed persistence key holding the full mapping.
const StorageKey = "matcher_dict"

// Record is one remembered equivalence. Desc and Attr keep the original
// display text so the management UI can show what the user registered.
type Record struct {
	Desc string `json:"desc"`
	Attr string `json:"attr"`
	Date string `json:"date"`
}

// Pair is one description/attachment pair submitted for registration.
type Pair struct {
	Desc string `json:"desc"`
	Attr string `json:"attr"`
}

// Store reads and mutates the persisted dictionary. Every successful
// mutation invokes onChange so visible annotations stay consistent with
// the dictionary.
type Store struct {
	kv       storage.Store
	onChange func()
	now      func() time.Time
}

// New creates a Store over kv. onChange may be nil.
func New(kv storage.Store, onChange func()) *Store {
	return &Store{kv: kv, onChange: onChange, now: time.Now}
}

// GetAll returns the full mapping. Persistence failures and an
// uninitialized store both yield an empty map, never an error: a missing
// dictionary just means nothing has been registered yet.
func (s *Store) GetAll() map[string]Record {
	dict := map[string]Record{}
	if _, err := s.kv.Get(StorageKey, &dict); err != nil {
		return map[string]Record{}
	}
	return dict
}

// AddOne registers desc/attr as equivalent, overwriting any existing record
// under the same pair key.
func (s *Store) AddOne(descText, attrText string) error {
	dict := s.GetAll()
	dict[textnorm.PairKey(descText, attrText)] = Record{
		Desc: descText,
		Attr: attrText,
		Date: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.kv.Set(StorageKey, dict); err != nil {
		return err
	}
	s.notify()
	return nil
}

// AddMany registers a batch of pairs and returns how many keys were newly
// inserted. Pairs with a blank side are skipped, existing records are kept
// as-is (first registration wins), and the mapping is persisted once for
// the whole batch.
func (s *Store) AddMany(pairs []Pair) (int, error) {
	if len(pairs) == 0 {
		return 0, nil
	}
	dict := s.GetAll()
	added := 0
	stamp := s.now().UTC().Format(time.RFC3339)
	for _, p := range pairs {
		desc := strings.TrimSpace(p.Desc)
		attr := strings.TrimSpace(p.Attr)
		if desc == "" || attr == "" {
			continue
		}
		key := textnorm.PairKey(desc, attr)
		if _, exists := dict[key]; exists {
			continue
		}
		dict[key] = Record{Desc: desc, Attr: attr, Date: stamp}
		added++
	}
	if err := s.kv.Set(StorageKey, dict); err != nil {
		return 0, err
	}
	s.notify()
	return added, nil
}

// Remove deletes the record under pairKey. Removing an absent key still
// persists and re-scans, matching the management UI's delete flow.
func (s *Store) Remove(pairKey string) error {
	dict := s.GetAll()
	delete(dict, pairKey)
	if err := s.kv.Set(StorageKey, dict); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
