package labeled

import (
	"maps"
	"sort"

	"github.com/aretw0/arrayschema/pkg/schema"
)

// Table is a collection of named arrays sharing coordinates and attributes.
type Table struct {
	vars   map[string]*Array
	coords map[string]*Array
	attrs  map[string]any
}

// TableOption configures a Table.
type TableOption func(*Table)

func WithTableAttrs(attrs map[string]any) TableOption {
	return func(t *Table) { maps.Copy(t.attrs, attrs) }
}

func WithTableCoord(name string, coord *Array) TableOption {
	return func(t *Table) { t.coords[name] = coord }
}

// NewTable creates a table from named arrays.
func NewTable(vars map[string]*Array, opts ...TableOption) *Table {
	t := &Table{
		vars:   maps.Clone(vars),
		coords: make(map[string]*Array),
		attrs:  make(map[string]any),
	}
	if t.vars == nil {
		t.vars = make(map[string]*Array)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) DataVars() map[string]schema.Array { return asSchemaArrays(t.vars) }
func (t *Table) Coords() map[string]schema.Array   { return asSchemaArrays(t.coords) }
func (t *Table) Attrs() map[string]any             { return maps.Clone(t.attrs) }

// Names returns the member names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.vars))
	for name := range t.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Var returns a member array.
func (t *Table) Var(name string) (*Array, bool) {
	a, ok := t.vars[name]
	return a, ok
}

// With returns a copy with name set to a.
func (t *Table) With(name string, a *Array) *Table {
	cp := t.clone()
	cp.vars[name] = a
	return cp
}

// Drop returns a copy without name.
func (t *Table) Drop(name string) *Table {
	cp := t.clone()
	delete(cp.vars, name)
	return cp
}

func (t *Table) clone() *Table {
	return &Table{
		vars:   maps.Clone(t.vars),
		coords: maps.Clone(t.coords),
		attrs:  maps.Clone(t.attrs),
	}
}

func asSchemaArrays(in map[string]*Array) map[string]schema.Array {
	out := make(map[string]schema.Array, len(in))
	for name, a := range in {
		out[name] = a
	}
	return out
}
