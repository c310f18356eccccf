package ports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/aretw0/arrayschema/pkg/schema"
)

var (
	// ErrSchemaNotFound is returned when a named schema does not exist.
	ErrSchemaNotFound = errors.New("schema not found")
	// ErrInvalidName is returned for names that are not safe store keys.
	ErrInvalidName = errors.New("invalid schema name")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateName checks that name can be used as a store key and file name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Document is a stored schema: its kind and serialized form.
type Document struct {
	Kind   schema.DocumentKind `json:"kind" yaml:"kind"`
	Schema json.RawMessage     `json:"schema" yaml:"-"`
}

// NewDocument serializes a schema into a Document.
func NewDocument(v schema.Validator) (Document, error) {
	data, err := schema.Marshal(v)
	if err != nil {
		return Document{}, err
	}
	return Document{Kind: v.DocKind(), Schema: data}, nil
}

// Decode checks and decodes the stored schema.
func (d Document) Decode() (schema.Validator, error) {
	return schema.Decode(d.Kind, d.Schema)
}

// SchemaStore persists named schema documents.
type SchemaStore interface {
	// Save stores doc under name, replacing any previous document.
	Save(ctx context.Context, name string, doc Document) error

	// Load retrieves a document.
	// Returns ErrSchemaNotFound if the name does not exist.
	Load(ctx context.Context, name string) (Document, error)

	// Delete removes a document. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns all stored names, sorted.
	List(ctx context.Context) ([]string, error)
}
