// Package cas implements persistent storage of emitted descriptor records.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/modrules/internal/core/domain"
	"go.trai.ch/modrules/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultPath is where the CLI keeps descriptor records, relative to the working directory.
const DefaultPath = ".modrules/descriptors.json"

var _ ports.DescriptorStore = (*Store)(nil)

// Store implements ports.DescriptorStore using a flat JSON file.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]domain.DescriptorRecord
}

// NewStore creates a new DescriptorStore backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.DescriptorRecord),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read descriptor store"), "path", s.path)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cache); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to unmarshal descriptor store"), "path", s.path)
	}

	return nil
}

// save writes the cache to disk. Callers must hold the write lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal descriptor store")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory for descriptor store"), "path", dir)
	}

	// Replaced through a sibling temp file.
	tmp := s.path + ".tmp"
	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write descriptor store"), "path", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to replace descriptor store"), "path", s.path)
	}

	return nil
}

// Get retrieves the record stored under key.
func (s *Store) Get(key string) (*domain.DescriptorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.cache[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Put stores the record under its key and persists the store.
func (s *Store) Put(record domain.DescriptorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[record.Key()] = record
	return s.save()
}
