// Package storage provides small fixed-key persistence shared between the
// agent daemon and the CLI. Values are written at whole-value granularity:
// each Set replaces the entire stored value for its key, so concurrent
// writers resolve as last-write-wins.
package storage

import "fmt"

// Store persists JSON-encodable values under fixed keys.
type Store interface {
	// Get decodes the value stored under key into out. It returns false
	// with no error when the key has never been written.
	Get(key string, out any) (bool, error)
	// Set stores value under key, replacing any previous value.
	Set(key string, value any) error
}

// Error represents a persistence failure.
type Error struct {
	Op    string
	Path  string
	Cause error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Cause)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
