package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileStore is a Store backed by a single JSON file. The daemon and the CLI
// both open the same file, so every read-modify-write cycle runs under an
// advisory file lock.
type FileStore struct {
	path string
	lock *flock.Flock
}

// NewFileStore creates a FileStore at path. The file and its parent
// directory are created lazily on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get decodes the value stored under key into out.
func (s *FileStore) Get(key string, out any) (bool, error) {
	if err := s.lock.RLock(); err != nil {
		return false, &Error{Op: "lock", Path: s.path, Cause: err}
	}
	defer func() { _ = s.lock.Unlock() }()

	values, err := s.read()
	if err != nil {
		return false, err
	}
	raw, ok := values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, &Error{Op: "decode", Path: s.path, Cause: err}
	}
	return true, nil
}

// Set stores value under key. The whole file is rewritten atomically via a
// temp file rename so a crashed writer never leaves a torn store behind.
func (s *FileStore) Set(key string, value any) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return &Error{Op: "mkdir", Path: s.path, Cause: err}
	}
	if err := s.lock.Lock(); err != nil {
		return &Error{Op: "lock", Path: s.path, Cause: err}
	}
	defer func() { _ = s.lock.Unlock() }()

	values, err := s.read()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return &Error{Op: "encode", Path: s.path, Cause: err}
	}
	values[key] = raw

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return &Error{Op: "encode", Path: s.path, Cause: err}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return &Error{Op: "write", Path: tmp, Cause: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &Error{Op: "rename", Path: s.path, Cause: err}
	}
	return nil
}

// read loads the full key space. A missing file is an empty store.
func (s *FileStore) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, &Error{Op: "read", Path: s.path, Cause: err}
	}
	values := map[string]json.RawMessage{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, &Error{Op: "decode", Path: s.path, Cause: err}
	}
	return values, nil
}
