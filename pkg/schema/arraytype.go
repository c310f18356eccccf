package schema

import (
	"encoding/json"
	"reflect"
	"sort"

	"github.com/aretw0/arrayschema/pkg/ndarray"
)

// ArrayType identifies the backend buffer type of an array.
type ArrayType struct {
	t reflect.Type
}

// TypeOf returns the ArrayType of v's dynamic type.
func TypeOf(v any) ArrayType { return ArrayType{reflect.TypeOf(v)} }

// ArrayTypeFor returns the ArrayType of T. Interface types match any
// implementation.
func ArrayTypeFor[T any]() ArrayType { return ArrayType{reflect.TypeFor[T]()} }

var (
	// DenseArray is the in-memory backend.
	DenseArray = ArrayTypeFor[*ndarray.Dense]()
	// ChunkedArray is the partitioned backend.
	ChunkedArray = ArrayTypeFor[*ndarray.Chunked]()
)

// arrayTypes is the closed set of backends a serialized schema may name.
var arrayTypes = map[string]ArrayType{
	DenseArray.String():   DenseArray,
	ChunkedArray.String(): ChunkedArray,
}

// ParseArrayType resolves a serialized backend name.
func ParseArrayType(name string) (ArrayType, error) {
	at, ok := arrayTypes[name]
	if !ok {
		return ArrayType{}, invalidf("unknown array_type: %s", name)
	}
	return at, nil
}

// ArrayTypeNames lists the names ParseArrayType accepts.
func ArrayTypeNames() []string {
	names := make([]string, 0, len(arrayTypes))
	for name := range arrayTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a ArrayType) String() string {
	if a.t == nil {
		return "<nil>"
	}
	return a.t.String()
}

// Accepts reports whether data is of this type, or implements it when the
// type is an interface.
func (a ArrayType) Accepts(data any) bool {
	if a.t == nil || data == nil {
		return false
	}
	actual := reflect.TypeOf(data)
	if actual == a.t {
		return true
	}
	return a.t.Kind() == reflect.Interface && actual.Implements(a.t)
}

// ArrayTypeSpec is accepted by WithArrayType: ArrayType, ArrayTypeName or
// *ArrayTypeSchema.
type ArrayTypeSpec interface {
	arrayTypeSchema() (*ArrayTypeSchema, error)
}

// ArrayTypeName is a serialized backend name such as "*ndarray.Dense".
type ArrayTypeName string

// ArrayTypeSchema checks the backend buffer of an array.
type ArrayTypeSchema struct {
	arrayType ArrayType
}

// NewArrayTypeSchema normalizes spec into an ArrayTypeSchema.
func NewArrayTypeSchema(spec ArrayTypeSpec) (*ArrayTypeSchema, error) {
	if spec == nil {
		return nil, invalidf("array_type: nil specification")
	}
	return spec.arrayTypeSchema()
}

func (a ArrayType) arrayTypeSchema() (*ArrayTypeSchema, error) {
	if a.t == nil {
		return nil, invalidf("array_type: nil type")
	}
	return &ArrayTypeSchema{arrayType: a}, nil
}

func (n ArrayTypeName) arrayTypeSchema() (*ArrayTypeSchema, error) {
	at, err := ParseArrayType(string(n))
	if err != nil {
		return nil, err
	}
	return &ArrayTypeSchema{arrayType: at}, nil
}

func (s *ArrayTypeSchema) arrayTypeSchema() (*ArrayTypeSchema, error) {
	if s == nil {
		return nil, invalidf("array_type: nil schema")
	}
	return s, nil
}

// ArrayType returns the expected backend.
func (s *ArrayTypeSchema) ArrayType() ArrayType { return s.arrayType }

// Validate checks the dynamic type of data, the array's backend buffer.
func (s *ArrayTypeSchema) Validate(data any) error {
	if !s.arrayType.Accepts(data) {
		return failf("array_type", "array_type %s != %s", TypeOf(data), s.arrayType)
	}
	return nil
}

// Serialize returns the backend type name. Types outside the closed set
// serialize fine but will not decode.
func (s *ArrayTypeSchema) Serialize() any { return s.arrayType.String() }

func (s *ArrayTypeSchema) MarshalJSON() ([]byte, error) { return marshal(s.Serialize()) }

func (s *ArrayTypeSchema) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return invalidf("array_type: %v", err)
	}
	at, err := ParseArrayType(name)
	if err != nil {
		return err
	}
	s.arrayType = at
	return nil
}
