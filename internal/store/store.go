package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Store is a JSON document persisted to a single file. The whole document
// lives in memory and is rewritten on every mutation. A missing or
// unreadable file falls back to the default document, which is persisted
// immediately so subsequent loads are stable.
type Store[T any] struct {
	path     string
	defaults func() T

	mu  sync.RWMutex
	doc T
}

func New[T any](path string, defaults func() T) *Store[T] {
	return &Store[T]{path: path, defaults: defaults}
}

func (s *Store[T]) Path() string {
	return s.path
}

// Load reads the document from disk. First run (no file) and a corrupt
// file both fall back to defaults but are logged differently: the latter
// means operator data could not be parsed.
func (s *Store[T]) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("read %s: %w", s.path, err)
		}
		log.Info().Str("path", s.path).Msg("document not found, seeding defaults")
		s.doc = s.defaults()
		return s.persist()
	}

	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Str("path", s.path).
			Msg("document present but unparseable, replacing with defaults")
		s.doc = s.defaults()
		return s.persist()
	}

	s.doc = doc
	return nil
}

// View runs fn with a read lock held. fn must not retain the document.
func (s *Store[T]) View(fn func(doc T)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.doc)
}

// Update runs fn with the write lock held and persists the document
// afterwards. If fn returns an error nothing is written.
func (s *Store[T]) Update(fn func(doc T) (T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := fn(s.doc)
	if err != nil {
		return err
	}
	s.doc = doc
	return s.persist()
}

// Bytes returns the current document serialized the same way it is
// persisted (2-space indent).
func (s *Store[T]) Bytes() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.MarshalIndent(s.doc, "", "  ")
}

// Replace swaps the whole document for one parsed from raw JSON and
// persists it. The document is validated by unmarshalling before any
// state changes, so a bad payload leaves the store untouched.
func (s *Store[T]) Replace(raw []byte) error {
	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	return s.persist()
}

// persist writes via a temp file and rename so readers never observe a
// partially written document. Caller holds the write lock.
func (s *Store[T]) persist() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
