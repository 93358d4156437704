package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File keeps every key in one JSON document, rewritten through a temp file and
// rename so a crash never leaves a half-written pair behind.
type File struct {
	path   string
	mu     sync.Mutex
	values map[string]string
}

// OpenFile opens (or lazily creates) the JSON state file at path.
// An unreadable document is treated as empty and replaced on the next write.
func OpenFile(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	f := &File{path: filepath.Clean(path), values: make(map[string]string)}

	data, err := os.ReadFile(f.path)
	switch {
	case os.IsNotExist(err):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if len(data) > 0 {
		var values map[string]string
		if json.Unmarshal(data, &values) == nil && values != nil {
			f.values = values
		}
	}
	return f, nil
}

func (f *File) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *File) Put(values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := f.copyValues()
	for k, v := range values {
		next[k] = v
	}
	return f.flush(next)
}

func (f *File) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := f.copyValues()
	for _, k := range keys {
		delete(next, k)
	}
	return f.flush(next)
}

func (f *File) Close() error { return nil }

func (f *File) copyValues() map[string]string {
	next := make(map[string]string, len(f.values))
	for k, v := range f.values {
		next[k] = v
	}
	return next
}

// flush writes next to disk and, on success, makes it the in-memory view.
func (f *File) flush(next map[string]string) error {
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	stagePath := f.path + ".new"
	if err := os.WriteFile(stagePath, data, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(stagePath, f.path); err != nil {
		os.Remove(stagePath) //nolint:errcheck
		return fmt.Errorf("replace state file: %w", err)
	}
	f.values = next
	return nil
}
