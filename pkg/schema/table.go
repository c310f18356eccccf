package schema

import (
	"encoding/json"
	"fmt"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ArraySpec is accepted by WithDataVar: an *ArraySchema or ArrayOptions.
// A nil spec only requires the member to exist.
type ArraySpec interface {
	arraySchema() (*ArraySchema, error)
}

// ArrayOptions builds the member schema in place.
type ArrayOptions []ArrayOption

func (o ArrayOptions) arraySchema() (*ArraySchema, error) { return NewArraySchema(o...) }

// TableSchema checks a collection of named member arrays (data variables),
// table-level attrs and predicate checks. Members are validated in
// declaration order.
type TableSchema struct {
	dataVars *orderedmap.OrderedMap[string, *ArraySchema]
	attrs    *AttrsSchema
	coords   *CoordsSchema
	checks   []TableCheck
}

// TableOption configures a TableSchema.
type TableOption func(*TableSchema) error

// NewTableSchema builds a TableSchema from options.
func NewTableSchema(opts ...TableOption) (*TableSchema, error) {
	s := &TableSchema{dataVars: orderedmap.New[string, *ArraySchema]()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustTableSchema is like NewTableSchema but panics on error.
func MustTableSchema(opts ...TableOption) *TableSchema {
	s, err := NewTableSchema(opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// WithDataVar declares a member. Redeclaring a name replaces its schema but
// keeps its position.
func WithDataVar(name string, spec ArraySpec) TableOption {
	return func(s *TableSchema) error {
		var member *ArraySchema
		if spec != nil {
			var err error
			if member, err = spec.arraySchema(); err != nil {
				return fmt.Errorf("data variable %s: %w", name, err)
			}
		}
		s.dataVars.Set(name, member)
		return nil
	}
}

// WithTableAttrs expects table-level attribute metadata.
func WithTableAttrs(spec AttrsSpec) TableOption {
	return func(s *TableSchema) (err error) {
		if spec == nil {
			return invalidf("attrs: nil specification")
		}
		s.attrs, err = spec.attrsSchema()
		return err
	}
}

// WithTableCoords reserves table-level coordinates. Validating a table
// schema that sets them returns ErrNotImplemented.
func WithTableCoords(spec CoordsSpec) TableOption {
	return func(s *TableSchema) (err error) {
		if spec == nil {
			return invalidf("coords: nil specification")
		}
		s.coords, err = spec.coordsSchema()
		return err
	}
}

// WithTableChecks appends table predicates, run in order after all facets pass.
func WithTableChecks(checks ...TableCheck) TableOption {
	return func(s *TableSchema) error {
		for _, c := range checks {
			if c == nil {
				return invalidf("all checks must be callables")
			}
		}
		s.checks = append(s.checks, checks...)
		return nil
	}
}

// members returns the declared data variables. A zero TableSchema has none.
func (s *TableSchema) members() *orderedmap.OrderedMap[string, *ArraySchema] {
	if s.dataVars == nil {
		return orderedmap.New[string, *ArraySchema]()
	}
	return s.dataVars
}

// DataVars returns member names in declaration order.
func (s *TableSchema) DataVars() []string {
	vars := s.members()
	names := make([]string, 0, vars.Len())
	for pair := vars.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// DataVar returns the schema of a member; nil with ok=true for an
// existence-only member.
func (s *TableSchema) DataVar(name string) (*ArraySchema, bool) {
	return s.members().Get(name)
}

func (s *TableSchema) Attrs() *AttrsSchema   { return s.attrs }
func (s *TableSchema) Coords() *CoordsSchema { return s.coords }
func (s *TableSchema) Checks() []TableCheck  { return slices.Clone(s.checks) }
func (s *TableSchema) DocKind() DocumentKind { return DocTable }

// Validate checks v, which must implement Table.
func (s *TableSchema) Validate(v any) error {
	tbl, ok := v.(Table)
	if !ok || isNil(tbl) {
		return failf("input", "input must be a labeled table, got %T", v)
	}

	vars := tbl.DataVars()
	for pair := s.members().Oldest(); pair != nil; pair = pair.Next() {
		member, ok := vars[pair.Key]
		if !ok {
			return failf("data_vars", "data variable %s not in ds", pair.Key)
		}
		if isNil(member) {
			return failf("data_vars", "data variable %s is nil", pair.Key)
		}
		if pair.Value == nil {
			continue
		}
		if err := pair.Value.validateFacets(member); err != nil {
			return within(err, "data_vars", pair.Key)
		}
		if err := pair.Value.runChecks(member); err != nil {
			return err
		}
	}

	if s.attrs != nil {
		if err := s.attrs.Validate(tbl.Attrs()); err != nil {
			return err
		}
	}
	if s.coords != nil {
		return fmt.Errorf("%w: coords schema not implemented yet", ErrNotImplemented)
	}
	for _, check := range s.checks {
		if err := check(tbl); err != nil {
			return err
		}
	}
	return nil
}

// Serialize returns {"data_vars", "attrs", "coords"}; attrs is {} when unset
// and coords is only present when set.
func (s *TableSchema) Serialize() any {
	vars := orderedmap.New[string, any]()
	for pair := s.members().Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			vars.Set(pair.Key, nil)
			continue
		}
		vars.Set(pair.Key, pair.Value.Serialize())
	}

	om := orderedmap.New[string, any]()
	om.Set("data_vars", vars)
	if s.attrs != nil {
		om.Set("attrs", s.attrs.Serialize())
	} else {
		om.Set("attrs", map[string]any{})
	}
	if s.coords != nil {
		om.Set("coords", s.coords.Serialize())
	}
	return om
}

func (s *TableSchema) MarshalJSON() ([]byte, error) { return marshal(s.Serialize()) }

func (s *TableSchema) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject("table", data, "data_vars", "attrs", "coords")
	if err != nil {
		return err
	}
	out := TableSchema{dataVars: orderedmap.New[string, *ArraySchema]()}

	if msg, ok := raw["data_vars"]; ok && !isNull(msg) {
		members := orderedmap.New[string, json.RawMessage]()
		if err := json.Unmarshal(msg, members); err != nil {
			return invalidf("data_vars: %v", err)
		}
		for pair := members.Oldest(); pair != nil; pair = pair.Next() {
			if isNull(pair.Value) {
				out.dataVars.Set(pair.Key, nil)
				continue
			}
			member, err := DecodeArraySchema(pair.Value)
			if err != nil {
				return fmt.Errorf("data variable %s: %w", pair.Key, err)
			}
			out.dataVars.Set(pair.Key, member)
		}
	}

	if msg, ok := raw["attrs"]; ok && !isNull(msg) && !isEmptyObject(msg) {
		attrs := &AttrsSchema{}
		if err := attrs.UnmarshalJSON(msg); err != nil {
			return err
		}
		out.attrs = attrs
	}
	if msg, ok := raw["coords"]; ok && !isNull(msg) {
		coords := &CoordsSchema{}
		if err := coords.UnmarshalJSON(msg); err != nil {
			return err
		}
		out.coords = coords
	}
	*s = out
	return nil
}

// DecodeTableSchema decodes a serialized TableSchema.
func DecodeTableSchema(data []byte) (*TableSchema, error) {
	s := &TableSchema{}
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return s, nil
}

func isEmptyObject(raw json.RawMessage) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal(raw, &m) == nil && m != nil && len(m) == 0
}
