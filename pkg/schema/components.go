package schema

import (
	"encoding/json"
	"fmt"
	"slices"
)

// --- DType ---

// DTypeSpec is accepted by WithDType: a DType, a Kind, a DTypeName or an
// already-built *DTypeSchema.
type DTypeSpec interface {
	dtypeSchema() (*DTypeSchema, error)
}

// DTypeName is a dtype or kind given by name, e.g. "int32", "<f8", "integer".
type DTypeName string

// DTypeSchema checks the element type of an array.
// Exactly one of a concrete dtype or an abstract kind is set.
type DTypeSchema struct {
	dtype DType
	kind  Kind
}

// NewDTypeSchema normalizes spec into a DTypeSchema.
func NewDTypeSchema(spec DTypeSpec) (*DTypeSchema, error) {
	if spec == nil {
		return nil, invalidf("dtype: nil specification")
	}
	return spec.dtypeSchema()
}

func (d DType) dtypeSchema() (*DTypeSchema, error) {
	if d.IsZero() {
		return nil, invalidf("dtype: zero DType")
	}
	return &DTypeSchema{dtype: d}, nil
}

func (k Kind) dtypeSchema() (*DTypeSchema, error) {
	if _, ok := ParseKind(string(k)); !ok {
		return nil, invalidf("dtype: unknown kind %q", string(k))
	}
	return &DTypeSchema{kind: k}, nil
}

func (n DTypeName) dtypeSchema() (*DTypeSchema, error) {
	if k, ok := ParseKind(string(n)); ok {
		return &DTypeSchema{kind: k}, nil
	}
	d, err := ParseDType(string(n))
	if err != nil {
		return nil, err
	}
	return &DTypeSchema{dtype: d}, nil
}

func (s *DTypeSchema) dtypeSchema() (*DTypeSchema, error) {
	if s == nil {
		return nil, invalidf("dtype: nil schema")
	}
	return s, nil
}

// DType returns the expected concrete dtype, zero when a kind is expected.
func (s *DTypeSchema) DType() DType { return s.dtype }

// Kind returns the expected kind, empty when a concrete dtype is expected.
func (s *DTypeSchema) Kind() Kind { return s.kind }

func (s *DTypeSchema) String() string {
	if s.kind != "" {
		return string(s.kind)
	}
	return s.dtype.String()
}

// Validate checks that actual equals, or is a sub-kind of, the expectation.
func (s *DTypeSchema) Validate(actual DType) error {
	if s.kind != "" {
		if s.kind.Matches(actual) {
			return nil
		}
	} else if actual == s.dtype {
		return nil
	}
	return failf("dtype", "dtype %s != %s", actual, s)
}

// Serialize returns the typestr of a concrete dtype or the kind name.
func (s *DTypeSchema) Serialize() any {
	if s.kind != "" {
		return string(s.kind)
	}
	return s.dtype.TypeStr()
}

func (s *DTypeSchema) MarshalJSON() ([]byte, error) { return marshal(s.Serialize()) }

func (s *DTypeSchema) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return invalidf("dtype: %v", err)
	}
	parsed, err := DTypeName(name).dtypeSchema()
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// --- Dims ---

// DimsSpec is accepted by WithDims: Dims or *DimsSchema.
type DimsSpec interface {
	dimsSchema() (*DimsSchema, error)
}

// Dims lists expected dimension names in order. An empty name is a wildcard.
type Dims []string

// DimsSchema checks the ordered dimension names of an array.
type DimsSchema struct {
	dims []string
}

// NewDimsSchema builds a DimsSchema; "" entries match any name.
func NewDimsSchema(dims ...string) *DimsSchema {
	return &DimsSchema{dims: slices.Clone(dims)}
}

func (d Dims) dimsSchema() (*DimsSchema, error) {
	if d == nil {
		return nil, invalidf("dims: nil specification")
	}
	return NewDimsSchema(d...), nil
}

func (s *DimsSchema) dimsSchema() (*DimsSchema, error) {
	if s == nil {
		return nil, invalidf("dims: nil schema")
	}
	return s, nil
}

// Dims returns a copy of the expected names.
func (s *DimsSchema) Dims() []string { return slices.Clone(s.dims) }

// Validate checks length first, then the first differing non-wildcard axis.
func (s *DimsSchema) Validate(actual []string) error {
	if len(actual) != len(s.dims) {
		return failf("dims", "length of dims does not match: %d != %d", len(actual), len(s.dims))
	}
	for i, expected := range s.dims {
		if expected != "" && actual[i] != expected {
			return failf("dims", "dim mismatch in axis %d: %s != %s", i, actual[i], expected)
		}
	}
	return nil
}

// Serialize renders wildcards as null.
func (s *DimsSchema) Serialize() any {
	out := make([]any, len(s.dims))
	for i, d := range s.dims {
		if d != "" {
			out[i] = d
		}
	}
	return out
}

func (s *DimsSchema) MarshalJSON() ([]byte, error) { return marshal(s.Serialize()) }

func (s *DimsSchema) UnmarshalJSON(data []byte) error {
	var raw []*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return invalidf("dims: %v", err)
	}
	if raw == nil {
		return invalidf("dims: expected an array")
	}
	dims := make([]string, len(raw))
	for i, d := range raw {
		if d != nil {
			if *d == "" {
				return invalidf("dims: empty name in axis %d", i)
			}
			dims[i] = *d
		}
	}
	s.dims = dims
	return nil
}

// --- Shape ---

// AnySize is the wildcard entry of a Shape.
const AnySize = -1

// ShapeSpec is accepted by WithShape: Shape or *ShapeSchema.
type ShapeSpec interface {
	shapeSchema() (*ShapeSchema, error)
}

// Shape lists expected axis sizes in order. Negative entries are wildcards.
type Shape []int

// ShapeSchema checks the shape of an array.
type ShapeSchema struct {
	shape []int
}

// NewShapeSchema builds a ShapeSchema; AnySize entries match any size.
func NewShapeSchema(shape ...int) *ShapeSchema {
	out := make([]int, len(shape))
	for i, n := range shape {
		out[i] = max(n, AnySize)
	}
	return &ShapeSchema{shape: out}
}

func (sh Shape) shapeSchema() (*ShapeSchema, error) {
	if sh == nil {
		return nil, invalidf("shape: nil specification")
	}
	return NewShapeSchema(sh...), nil
}

func (s *ShapeSchema) shapeSchema() (*ShapeSchema, error) {
	if s == nil {
		return nil, invalidf("shape: nil schema")
	}
	return s, nil
}

// Shape returns a copy of the expected sizes.
func (s *ShapeSchema) Shape() []int { return slices.Clone(s.shape) }

// Validate checks dimensionality first, then the first differing sized axis.
func (s *ShapeSchema) Validate(actual []int) error {
	if len(actual) != len(s.shape) {
		return failf("shape", "number of dimensions in shape (%d) != da.ndim (%d)", len(actual), len(s.shape))
	}
	for i, expected := range s.shape {
		if expected != AnySize && actual[i] != expected {
			return failf("shape", "shape mismatch in axis %d: %d != %d", i, actual[i], expected)
		}
	}
	return nil
}

// Serialize renders wildcards as null.
func (s *ShapeSchema) Serialize() any {
	out := make([]any, len(s.shape))
	for i, n := range s.shape {
		if n != AnySize {
			out[i] = n
		}
	}
	return out
}

func (s *ShapeSchema) MarshalJSON() ([]byte, error) { return marshal(s.Serialize()) }

func (s *ShapeSchema) UnmarshalJSON(data []byte) error {
	var raw []*int
	if err := json.Unmarshal(data, &raw); err != nil {
		return invalidf("shape: %v", err)
	}
	if raw == nil {
		return invalidf("shape: expected an array")
	}
	shape := make([]int, len(raw))
	for i, n := range raw {
		switch {
		case n == nil:
			shape[i] = AnySize
		case *n < 0:
			return invalidf("shape: negative size %d in axis %d", *n, i)
		default:
			shape[i] = *n
		}
	}
	s.shape = shape
	return nil
}

// --- Name ---

// NameSpec is accepted by WithName: Name or *NameSchema.
type NameSpec interface {
	nameSchema() (*NameSchema, error)
}

// Name is an expected array name.
type Name string

// NameSchema checks the array name by exact match.
type NameSchema struct {
	name string
}

// NewNameSchema builds a NameSchema.
func NewNameSchema(name string) *NameSchema { return &NameSchema{name: name} }

func (n Name) nameSchema() (*NameSchema, error) { return NewNameSchema(string(n)), nil }

func (s *NameSchema) nameSchema() (*NameSchema, error) {
	if s == nil {
		return nil, invalidf("name: nil schema")
	}
	return s, nil
}

// Name returns the expected name.
func (s *NameSchema) Name() string { return s.name }

// Validate compares the actual name with the expected one.
func (s *NameSchema) Validate(actual string) error {
	if actual != s.name {
		return failf("name", "name %s != %s", actual, s.name)
	}
	return nil
}

// Serialize returns the expected name.
func (s *NameSchema) Serialize() any { return s.name }

func (s *NameSchema) MarshalJSON() ([]byte, error) { return marshal(s.name) }

func (s *NameSchema) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &s.name); err != nil {
		return invalidf("name: %v", err)
	}
	return nil
}

// tuple renders block sizes as "(2, 1)".
func tuple(ns []int) string {
	if len(ns) == 1 {
		return fmt.Sprintf("(%d,)", ns[0])
	}
	out := "("
	for i, n := range ns {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprint(n)
	}
	return out + ")"
}
