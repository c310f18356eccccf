package schema

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"sort"
)

// AttrType is the closed set of attribute value types.
type AttrType string

const (
	StringAttr  AttrType = "string"
	IntegerAttr AttrType = "integer"
	NumberAttr  AttrType = "number"
	BooleanAttr AttrType = "boolean"
	ArrayAttr   AttrType = "array"
	ObjectAttr  AttrType = "object"
)

func (t AttrType) valid() bool {
	switch t {
	case StringAttr, IntegerAttr, NumberAttr, BooleanAttr, ArrayAttr, ObjectAttr:
		return true
	}
	return false
}

// Check reports whether v is of this type. Whole-number floats count as
// integers, as JSON decoding produces them.
func (t AttrType) Check(v any) bool {
	switch t {
	case StringAttr:
		_, ok := v.(string)
		return ok
	case BooleanAttr:
		_, ok := v.(bool)
		return ok
	case IntegerAttr:
		if f, ok := toFloat(v); ok {
			return f == math.Trunc(f) && !math.IsInf(f, 0)
		}
		return false
	case NumberAttr:
		_, ok := toFloat(v)
		return ok
	case ArrayAttr:
		if v == nil {
			return false
		}
		k := reflect.TypeOf(v).Kind()
		return k == reflect.Slice || k == reflect.Array
	case ObjectAttr:
		if v == nil {
			return false
		}
		rt := reflect.TypeOf(v)
		return rt.Kind() == reflect.Map && rt.Key().Kind() == reflect.String
	}
	return false
}

// AttrSchema checks one attribute value. A zero AttrSchema only requires
// the key to exist.
type AttrSchema struct {
	typ   AttrType
	value any
}

// NewAttrSchema builds an attribute expectation. typ may be empty and value
// may be nil to leave either unconstrained.
func NewAttrSchema(typ AttrType, value any) (*AttrSchema, error) {
	if typ != "" && !typ.valid() {
		return nil, invalidf("attr: unknown type %q", string(typ))
	}
	return &AttrSchema{typ: typ, value: value}, nil
}

// AttrValue expects the exact value v.
func AttrValue(v any) *AttrSchema { return &AttrSchema{value: v} }

// AttrOfType expects a value of type t.
func AttrOfType(t AttrType) *AttrSchema { return &AttrSchema{typ: t} }

// Type returns the expected type, empty when unconstrained.
func (s *AttrSchema) Type() AttrType { return s.typ }

// Value returns the expected value, nil when unconstrained.
func (s *AttrSchema) Value() any { return s.value }

func (s *AttrSchema) Validate(v any) error {
	if s.typ != "" && !s.typ.Check(v) {
		return failf("attrs", "attrs %s is not of type %s", describe(v), s.typ)
	}
	if s.value != nil && !equalValues(s.value, v) {
		return failf("attrs", "attr %s != %s", describe(v), describe(s.value))
	}
	return nil
}

type attrJSON struct {
	Type  *AttrType `json:"type"`
	Value any       `json:"value"`
}

// Serialize returns {"type": name|null, "value": any}.
func (s *AttrSchema) Serialize() any {
	out := attrJSON{Value: s.value}
	if s.typ != "" {
		t := s.typ
		out.Type = &t
	}
	return out
}

func (s *AttrSchema) MarshalJSON() ([]byte, error) { return marshal(s.Serialize()) }

func (s *AttrSchema) UnmarshalJSON(data []byte) error {
	var raw attrJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return invalidf("attr: %v", err)
	}
	var typ AttrType
	if raw.Type != nil {
		typ = *raw.Type
	}
	parsed, err := NewAttrSchema(typ, raw.Value)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// --- Key policy ---

type keyPolicy struct {
	requireAll bool
	allowExtra bool
}

func defaultKeyPolicy() keyPolicy { return keyPolicy{requireAll: true, allowExtra: true} }

// KeyOption configures the missing/extra key policy of attrs and coords.
type KeyOption func(*keyPolicy)

// RequireAllKeys makes every declared key mandatory (default true).
func RequireAllKeys(v bool) KeyOption { return func(p *keyPolicy) { p.requireAll = v } }

// AllowExtraKeys tolerates undeclared keys (default true).
func AllowExtraKeys(v bool) KeyOption { return func(p *keyPolicy) { p.allowExtra = v } }

// check returns the sorted declared keys missing from actual (when required)
// and the sorted undeclared keys present (when not allowed).
func (p keyPolicy) check(facet string, declared, actual []string) error {
	if p.requireAll {
		if missing := difference(declared, actual); len(missing) > 0 {
			return failf(facet, "%s has missing keys: %v", facet, missing)
		}
	}
	if !p.allowExtra {
		if extra := difference(actual, declared); len(extra) > 0 {
			return failf(facet, "%s has extra keys: %v", facet, extra)
		}
	}
	return nil
}

func difference(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, k := range b {
		seen[k] = struct{}{}
	}
	var out []string
	for _, k := range a {
		if _, ok := seen[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- Attrs ---

// AttrsSpec is accepted by WithAttrs: Attrs or *AttrsSchema.
type AttrsSpec interface {
	attrsSchema() (*AttrsSchema, error)
}

// Attrs maps attribute keys to expectations. A nil entry only requires the
// key to exist.
type Attrs map[string]*AttrSchema

// AttrsSchema checks an attribute mapping.
type AttrsSchema struct {
	attrs map[string]*AttrSchema
	keyPolicy
}

// NewAttrsSchema builds an AttrsSchema. By default all declared keys are
// required and extra keys are allowed.
func NewAttrsSchema(attrs Attrs, opts ...KeyOption) (*AttrsSchema, error) {
	s := &AttrsSchema{attrs: make(map[string]*AttrSchema, len(attrs)), keyPolicy: defaultKeyPolicy()}
	for _, opt := range opts {
		opt(&s.keyPolicy)
	}
	for key, attr := range attrs {
		if attr == nil {
			attr = &AttrSchema{}
		}
		if attr.typ != "" && !attr.typ.valid() {
			return nil, invalidf("attrs: %s: unknown type %q", key, string(attr.typ))
		}
		s.attrs[key] = attr
	}
	return s, nil
}

func (a Attrs) attrsSchema() (*AttrsSchema, error) { return NewAttrsSchema(a) }

func (s *AttrsSchema) attrsSchema() (*AttrsSchema, error) {
	if s == nil {
		return nil, invalidf("attrs: nil schema")
	}
	return s, nil
}

// Keys returns the declared keys, sorted.
func (s *AttrsSchema) Keys() []string { return sortedKeys(s.attrs) }

// Attr returns the expectation for key.
func (s *AttrsSchema) Attr(key string) (*AttrSchema, bool) {
	a, ok := s.attrs[key]
	return a, ok
}

func (s *AttrsSchema) RequireAllKeys() bool { return s.requireAll }
func (s *AttrsSchema) AllowExtraKeys() bool { return s.allowExtra }

// Validate applies the key policy, then each declared key that is present.
func (s *AttrsSchema) Validate(attrs map[string]any) error {
	if err := s.check("attrs", s.Keys(), sortedKeys(attrs)); err != nil {
		return err
	}
	for _, key := range s.Keys() {
		v, ok := attrs[key]
		if !ok {
			continue
		}
		if err := s.attrs[key].Validate(v); err != nil {
			return within(err, "attrs", key)
		}
	}
	return nil
}

type attrsJSON struct {
	RequireAllKeys bool                   `json:"require_all_keys"`
	AllowExtraKeys bool                   `json:"allow_extra_keys"`
	Attrs          map[string]*AttrSchema `json:"attrs"`
}

func (s *AttrsSchema) Serialize() any {
	attrs := s.attrs
	if attrs == nil {
		attrs = map[string]*AttrSchema{}
	}
	return attrsJSON{RequireAllKeys: s.requireAll, AllowExtraKeys: s.allowExtra, Attrs: attrs}
}

func (s *AttrsSchema) MarshalJSON() ([]byte, error) { return marshal(s.Serialize()) }

func (s *AttrsSchema) UnmarshalJSON(data []byte) error {
	raw := attrsJSON{RequireAllKeys: true, AllowExtraKeys: true}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return unwrapInvalid("attrs", err)
	}
	parsed, err := NewAttrsSchema(raw.Attrs, RequireAllKeys(raw.RequireAllKeys), AllowExtraKeys(raw.AllowExtraKeys))
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}
