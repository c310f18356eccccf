package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/arrayschema/pkg/ports"
	"github.com/gofrs/flock"
)

const (
	ext          = ".json"
	lockInterval = 10 * time.Millisecond
)

// Store implements ports.SchemaStore using the local filesystem.
// Each schema is a JSON file named <name>.json in BasePath. Writers from
// different processes are serialized with an advisory lock on BasePath/.lock.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".arrayschema/schemas".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".arrayschema", "schemas")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.BasePath, name+ext)
}

// withLock runs fn while holding the directory write lock.
func (s *Store) withLock(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure schema directory: %w", err)
	}
	lock := flock.New(filepath.Join(s.BasePath, ".lock"))
	ok, err := lock.TryLockContext(ctx, lockInterval)
	if err != nil {
		return fmt.Errorf("failed to lock schema directory: %w", err)
	}
	if !ok {
		return fmt.Errorf("failed to lock schema directory: %s", s.BasePath)
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}

// Save persists the document atomically.
// It writes to a temporary file first, syncs it, and renames it over the destination.
func (s *Store) Save(ctx context.Context, name string, doc ports.Document) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to marshal schema document: %w", err)
	}

	return s.withLock(ctx, func() error {
		// Same directory keeps the rename on one filesystem.
		tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+name+"-*.tmp")
		if err != nil {
			return fmt.Errorf("failed to create temp file: %w", err)
		}
		tmpPath := tmpFile.Name()
		defer func() {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}()

		if _, err := tmpFile.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write to temp file: %w", err)
		}
		if err := tmpFile.Sync(); err != nil {
			return fmt.Errorf("failed to fsync temp file: %w", err)
		}
		// Windows cannot rename an open file.
		if err := tmpFile.Close(); err != nil {
			return fmt.Errorf("failed to close temp file: %w", err)
		}

		destPath := s.path(name)
		if _, err := os.Stat(destPath); err == nil {
			// os.Rename does not replace on Windows.
			if err := os.Remove(destPath); err != nil {
				return fmt.Errorf("failed to remove existing schema file for overwrite: %w", err)
			}
		}
		if err := os.Rename(tmpPath, destPath); err != nil {
			return fmt.Errorf("failed to rename temp file to schema file: %w", err)
		}
		return nil
	})
}

// Load reads the document from its JSON file.
func (s *Store) Load(ctx context.Context, name string) (ports.Document, error) {
	if err := ports.ValidateName(name); err != nil {
		return ports.Document{}, err
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ports.Document{}, ports.ErrSchemaNotFound
		}
		return ports.Document{}, fmt.Errorf("failed to read schema file: %w", err)
	}

	var doc ports.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return ports.Document{}, fmt.Errorf("failed to unmarshal schema document %s: %w", name, err)
	}
	return doc, nil
}

// Delete removes the schema file.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	return s.withLock(ctx, func() error {
		if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete schema file: %w", err)
		}
		return nil
	})
}

// List returns the names of all stored schemas, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if ports.ValidateName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
