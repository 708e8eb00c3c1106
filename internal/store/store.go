// Package store holds the host's canonical key-value mapping and manages
// its durability against a properties-format backing file.
package store

import (
	"fmt"
	"os"
	"sync"

	"confhub/internal/logging"
	"confhub/internal/props"
)

var logger = logging.For("store")

// Store is a concurrent string mapping with synchronized load/save against
// a backing file. Single-key operations are individually atomic without any
// global lock; only the disk I/O critical sections take a mutex, so a save
// snapshot may interleave with concurrent single-key writes. Mutations are
// visible to concurrent callers immediately but durable only after Save.
type Store struct {
	file     string
	encoding props.Encoding

	entries sync.Map // string -> string

	// ioMu makes Load and Save mutually exclusive so a load never reads
	// the file mid-write. It is deliberately not taken by single-key ops.
	ioMu sync.Mutex
}

// Open creates the Store for a backing file. An existing file is loaded; a
// missing one is created by persisting an empty snapshot, so the file exists
// after first activation. An existing but unreadable or unparseable file
// fails construction.
func Open(file string, enc props.Encoding) (*Store, error) {
	s := &Store{file: file, encoding: enc}

	_, err := os.Stat(file)
	switch {
	case err == nil:
		logger.Info("loading configuration", "file", file)
		if err := s.Load(); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		logger.Info("creating configuration", "file", file)
		if err := s.Save(""); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("stat %s: %w", file, err)
	}
	return s, nil
}

// File returns the backing file path.
func (s *Store) File() string {
	return s.file
}

// Encoding returns the backing file's character encoding.
func (s *Store) Encoding() props.Encoding {
	return s.encoding
}

// Get returns the value for a key, or false if the key is absent.
func (s *Store) Get(key string) (string, bool) {
	v, ok := s.entries.Load(key)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Contains reports whether the key is present.
func (s *Store) Contains(key string) bool {
	_, ok := s.entries.Load(key)
	return ok
}

// Put creates or overwrites a single entry.
func (s *Store) Put(key, value string) {
	s.entries.Store(key, value)
}

// PutAll applies each pair independently; there is no cross-key atomicity.
// Returns the number of pairs submitted, which counts overwrites that left
// a key's value unchanged.
func (s *Store) PutAll(m map[string]string) int {
	for k, v := range m {
		s.entries.Store(k, v)
	}
	return len(m)
}

// Remove deletes an entry. Returns whether the key was present.
func (s *Store) Remove(key string) bool {
	_, present := s.entries.LoadAndDelete(key)
	return present
}

// Size returns the number of entries.
func (s *Store) Size() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Clear removes every entry and returns how many were removed.
func (s *Store) Clear() int {
	n := 0
	s.entries.Range(func(k, _ any) bool {
		if _, present := s.entries.LoadAndDelete(k); present {
			n++
		}
		return true
	})
	return n
}

// Snapshot copies the full mapping at one instant of the walk. Keys touched
// by concurrent writers mid-walk may carry either the old or new value.
func (s *Store) Snapshot() map[string]string {
	m := make(map[string]string)
	s.entries.Range(func(k, v any) bool {
		m[k.(string)] = v.(string)
		return true
	})
	return m
}

// Load wholesale-replaces the mapping from the backing file. Entries not
// present in the file are discarded; this is a replace, not a merge.
func (s *Store) Load() error {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	data, err := os.ReadFile(s.file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.file, err)
	}
	loaded, err := props.Unmarshal(data, s.encoding)
	if err != nil {
		return fmt.Errorf("loading %s: %w", s.file, err)
	}

	s.entries.Range(func(k, _ any) bool {
		if _, ok := loaded[k.(string)]; !ok {
			s.entries.Delete(k)
		}
		return true
	})
	for k, v := range loaded {
		s.entries.Store(k, v)
	}

	logger.Debug("loaded entries", "file", s.file, "count", len(loaded))
	return nil
}

// Save serializes the current snapshot and overwrites the backing file in
// place. There is no temp-file-plus-rename step: a crash mid-write can leave
// a truncated file. On error the in-memory mapping is untouched.
func (s *Store) Save(comments string) error {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	snapshot := s.Snapshot()
	data, err := props.Marshal(snapshot, comments, s.encoding)
	if err != nil {
		return fmt.Errorf("serializing %s: %w", s.file, err)
	}
	if err := os.WriteFile(s.file, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", s.file, err)
	}

	logger.Debug("saved entries", "file", s.file, "count", len(snapshot))
	return nil
}
