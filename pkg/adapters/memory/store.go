package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/aretw0/arrayschema/pkg/ports"
)

// Store implements ports.SchemaStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]ports.Document
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]ports.Document),
	}
}

// Save keeps a copy of doc.
func (s *Store) Save(ctx context.Context, name string, doc ports.Document) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	doc.Schema = bytes.Clone(doc.Schema)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = doc
	return nil
}

// Load returns a copy so callers cannot mutate stored bytes.
func (s *Store) Load(ctx context.Context, name string) (ports.Document, error) {
	if err := ports.ValidateName(name); err != nil {
		return ports.Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[name]
	if !ok {
		return ports.Document{}, ports.ErrSchemaNotFound
	}
	doc.Schema = bytes.Clone(doc.Schema)
	return doc, nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns stored names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
