package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSchema marks a malformed schema: a bad option value, an
	// unknown dtype or array_type name, an unsupported chunk specification.
	// It is a programming error, distinct from a container failing validation.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrNotImplemented is returned by reserved facets.
	ErrNotImplemented = errors.New("not implemented")
)

// SchemaError is the single validation failure type.
// Facet names the schema component that rejected the container and Path
// locates the failing member, coordinate or attribute inside a composite.
type SchemaError struct {
	Path  []string
	Facet string
	Msg   string
}

func (e *SchemaError) Error() string {
	if len(e.Path) == 0 {
		return e.Msg
	}
	return strings.Join(e.Path, ".") + ": " + e.Msg
}

// IsSchemaError reports whether err is (or wraps) a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

func failf(facet, format string, args ...any) *SchemaError {
	return &SchemaError{Facet: facet, Msg: fmt.Sprintf(format, args...)}
}

// within prefixes path to a *SchemaError. Other errors pass through.
func within(err error, path ...string) error {
	se, ok := err.(*SchemaError)
	if !ok {
		return err
	}
	p := make([]string, 0, len(path)+len(se.Path))
	p = append(p, path...)
	p = append(p, se.Path...)
	return &SchemaError{Path: p, Facet: se.Facet, Msg: se.Msg}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSchema, fmt.Sprintf(format, args...))
}
