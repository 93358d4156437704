// Package storage persists the client's local state: the bearer token, the
// cached user record and the pricing selections.
//
// Every backend applies a Put or Delete to all of its keys atomically, so the
// token and user record are always written and erased as a pair.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Persisted keys.
const (
	KeyToken        = "token"
	KeyUser         = "user"
	KeySelectedPlan = "selectedPlan"
	KeyBillingCycle = "billingCycle"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a small durable key/value store.
type Store interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(key string) (string, error)
	// Put writes every entry of values in one atomic operation.
	Put(values map[string]string) error
	// Delete removes every key in one atomic operation. Missing keys are ignored.
	Delete(keys ...string) error
	Close() error
}

// Open opens the backend named by backend with its files under dir.
func Open(backend, dir string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return OpenFile(filepath.Join(dir, "state.json"))
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, "state.db"))
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}

// GetOptional returns the value under key, or "" when the key is absent.
func GetOptional(s Store, key string) (string, error) {
	v, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}
