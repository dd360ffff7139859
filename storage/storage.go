// Package storage persists small key-value blobs to local device storage.
//
// The auth coordinator uses it to keep the credential and the last-known
// profile snapshot across relaunches, so session state restores without a
// network round trip. Writes go through a temp file plus rename; RemoveAll
// clears every key in one pass so sign-out does not leave a credential behind
// a half-cleared profile.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a file-backed keystore rooted at a single directory.
type Store struct {
	mu  sync.Mutex
	dir string
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	// Keys are fixed identifiers chosen by callers, not user input; the
	// replacement only keeps them filesystem-safe.
	name := strings.ReplaceAll(key, string(filepath.Separator), "_")
	return filepath.Join(s.dir, name+".json")
}

// Set marshals value as JSON and writes it under key.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("storage: marshal %q: %w", key, err)
	}

	dst := s.path(key)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("storage: write %q: %w", key, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("storage: commit %q: %w", key, err)
	}
	return nil
}

// Get unmarshals the value stored under key into out.
func (s *Store) Get(key string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("storage: read %q: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("storage: decode %q: %w", key, err)
	}
	return nil
}

// RemoveAll deletes every given key. Missing keys are not an error; the first
// real filesystem failure is returned after attempting all keys, so a failure
// on one key cannot leave the others untouched.
func (s *Store) RemoveAll(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, key := range keys {
		if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			if firstErr == nil {
				firstErr = fmt.Errorf("storage: remove %q: %w", key, err)
			}
		}
	}
	return firstErr
}
