package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/arrayschema/pkg/ports"
)

// Issue is one stored schema that fails to load or decode.
type Issue struct {
	Name string
	Err  error
}

func (i Issue) String() string {
	return fmt.Sprintf("schema '%s': %v", i.Name, i.Err)
}

// Inspect loads and decodes every schema in store, returning the broken ones
// in name order.
func Inspect(ctx context.Context, store ports.SchemaStore) ([]Issue, error) {
	names, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}

	var issues []Issue
	for _, name := range names {
		doc, err := store.Load(ctx, name)
		if err != nil {
			issues = append(issues, Issue{Name: name, Err: fmt.Errorf("load error: %w", err)})
			continue
		}
		if _, err := doc.Decode(); err != nil {
			issues = append(issues, Issue{Name: name, Err: err})
		}
	}
	return issues, nil
}

// ValidateStore checks that every stored schema document still decodes,
// e.g. after manual edits to a file store.
func ValidateStore(ctx context.Context, store ports.SchemaStore) error {
	issues, err := Inspect(ctx, store)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		return nil
	}

	lines := make([]string, len(issues))
	for i, issue := range issues {
		lines[i] = issue.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(issues), strings.Join(lines, "\n- "))
}
