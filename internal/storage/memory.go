package storage

import (
	"encoding/json"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and one-shot scans that
// have no persistence requirement.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]json.RawMessage
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]json.RawMessage{}}
}

// Get decodes the value stored under key into out.
func (s *MemoryStore) Get(key string, out any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, &Error{Op: "decode", Cause: err}
	}
	return true, nil
}

// Set stores value under key.
func (s *MemoryStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return &Error{Op: "encode", Cause: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = raw
	return nil
}
