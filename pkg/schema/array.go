package schema

import (
	"encoding/json"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ArraySchema aggregates the facet expectations of a single labeled array.
// A nil facet is unconstrained. Build with NewArraySchema; the result is
// immutable and safe for concurrent validation.
type ArraySchema struct {
	dtype     *DTypeSchema
	dims      *DimsSchema
	shape     *ShapeSchema
	coords    *CoordsSchema
	name      *NameSchema
	chunks    *ChunksSchema
	attrs     *AttrsSchema
	arrayType *ArrayTypeSchema
	checks    []Check
}

// ArrayOption sets one facet of an ArraySchema.
type ArrayOption func(*ArraySchema) error

// NewArraySchema builds an ArraySchema from options. Any malformed option
// value yields an error wrapping ErrInvalidSchema.
func NewArraySchema(opts ...ArrayOption) (*ArraySchema, error) {
	s := &ArraySchema{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustArraySchema is like NewArraySchema but panics on error.
func MustArraySchema(opts ...ArrayOption) *ArraySchema {
	s, err := NewArraySchema(opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// With returns a copy of s with opts applied.
func (s *ArraySchema) With(opts ...ArrayOption) (*ArraySchema, error) {
	cp := *s
	cp.checks = slices.Clone(s.checks)
	for _, opt := range opts {
		if err := opt(&cp); err != nil {
			return nil, err
		}
	}
	return &cp, nil
}

// WithDType expects the element type: a DType, a DTypeName or a generic kind such as Integer.
func WithDType(spec DTypeSpec) ArrayOption {
	return func(s *ArraySchema) (err error) {
		s.dtype, err = NewDTypeSchema(spec)
		return err
	}
}

// WithDims expects dimension names in order; an empty name matches any.
func WithDims(spec DimsSpec) ArrayOption {
	return func(s *ArraySchema) (err error) {
		if spec == nil {
			return invalidf("dims: nil specification")
		}
		s.dims, err = spec.dimsSchema()
		return err
	}
}

// WithShape expects the extent of each axis; AnySize matches any extent.
func WithShape(spec ShapeSpec) ArrayOption {
	return func(s *ArraySchema) (err error) {
		if spec == nil {
			return invalidf("shape: nil specification")
		}
		s.shape, err = spec.shapeSchema()
		return err
	}
}

// WithName expects the array name.
func WithName(spec NameSpec) ArrayOption {
	return func(s *ArraySchema) (err error) {
		if spec == nil {
			return invalidf("name: nil specification")
		}
		s.name, err = spec.nameSchema()
		return err
	}
}

// WithArrayType expects the backend buffer type.
func WithArrayType(spec ArrayTypeSpec) ArrayOption {
	return func(s *ArraySchema) (err error) {
		s.arrayType, err = NewArrayTypeSchema(spec)
		return err
	}
}

// WithChunks expects a chunk layout, from a plain chunked flag down to explicit blocks.
func WithChunks(spec ChunksSpec) ArrayOption {
	return func(s *ArraySchema) (err error) {
		s.chunks, err = NewChunksSchema(spec)
		return err
	}
}

// WithAttrs expects attribute metadata under the given key policy.
func WithAttrs(spec AttrsSpec) ArrayOption {
	return func(s *ArraySchema) (err error) {
		if spec == nil {
			return invalidf("attrs: nil specification")
		}
		s.attrs, err = spec.attrsSchema()
		return err
	}
}

// WithCoords expects named coordinate arrays.
func WithCoords(spec CoordsSpec) ArrayOption {
	return func(s *ArraySchema) (err error) {
		if spec == nil {
			return invalidf("coords: nil specification")
		}
		s.coords, err = spec.coordsSchema()
		return err
	}
}

// WithChecks appends predicate checks, run in order after all facets pass.
func WithChecks(checks ...Check) ArrayOption {
	return func(s *ArraySchema) error {
		for _, c := range checks {
			if c == nil {
				return invalidf("all checks must be callables")
			}
		}
		s.checks = append(s.checks, checks...)
		return nil
	}
}

func (s *ArraySchema) DType() *DTypeSchema         { return s.dtype }
func (s *ArraySchema) Dims() *DimsSchema           { return s.dims }
func (s *ArraySchema) Shape() *ShapeSchema         { return s.shape }
func (s *ArraySchema) Coords() *CoordsSchema       { return s.coords }
func (s *ArraySchema) Name() *NameSchema           { return s.name }
func (s *ArraySchema) Chunks() *ChunksSchema       { return s.chunks }
func (s *ArraySchema) Attrs() *AttrsSchema         { return s.attrs }
func (s *ArraySchema) ArrayType() *ArrayTypeSchema { return s.arrayType }
func (s *ArraySchema) Checks() []Check             { return slices.Clone(s.checks) }

// DocKind identifies array schema documents.
func (s *ArraySchema) DocKind() DocumentKind { return DocArray }

func (s *ArraySchema) arraySchema() (*ArraySchema, error) { return s, nil }

// Validate checks v, which must implement Array. Facets run in the order
// dtype, name, dims, shape, coords, chunks, attrs, array_type and the first
// failure is returned as a *SchemaError. Checks run last and their errors
// are returned unmodified.
func (s *ArraySchema) Validate(v any) error {
	arr, ok := v.(Array)
	if !ok || isNil(arr) {
		return failf("input", "input must be a labeled array, got %T", v)
	}
	if err := s.validateFacets(arr); err != nil {
		return err
	}
	return s.runChecks(arr)
}

func (s *ArraySchema) validateFacets(arr Array) error {
	if s.dtype != nil {
		if err := s.dtype.Validate(arr.DType()); err != nil {
			return err
		}
	}
	if s.name != nil {
		if err := s.name.Validate(arr.Name()); err != nil {
			return err
		}
	}
	if s.dims != nil {
		if err := s.dims.Validate(arr.Dims()); err != nil {
			return err
		}
	}
	if s.shape != nil {
		if err := s.shape.Validate(arr.Shape()); err != nil {
			return err
		}
	}
	if s.coords != nil {
		if err := s.coords.Validate(arr.Coords()); err != nil {
			return err
		}
	}
	if s.chunks != nil {
		if err := s.chunks.Validate(arr.Chunks(), arr.Dims(), arr.Shape()); err != nil {
			return err
		}
	}
	if s.attrs != nil {
		if err := s.attrs.Validate(arr.Attrs()); err != nil {
			return err
		}
	}
	if s.arrayType != nil {
		if err := s.arrayType.Validate(arr.Data()); err != nil {
			return err
		}
	}
	return nil
}

func (s *ArraySchema) runChecks(arr Array) error {
	for _, check := range s.checks {
		if err := check(arr); err != nil {
			return err
		}
	}
	return nil
}

// arraySlots is the serialized facet order.
var arraySlots = []string{"dtype", "dims", "shape", "coords", "name", "chunks", "attrs", "array_type"}

type serializer interface {
	Serialize() any
}

func (s *ArraySchema) facets() map[string]serializer {
	out := make(map[string]serializer, len(arraySlots))
	add := func(key string, v serializer, present bool) {
		if present {
			out[key] = v
		}
	}
	add("dtype", s.dtype, s.dtype != nil)
	add("dims", s.dims, s.dims != nil)
	add("shape", s.shape, s.shape != nil)
	add("coords", s.coords, s.coords != nil)
	add("name", s.name, s.name != nil)
	add("chunks", s.chunks, s.chunks != nil)
	add("attrs", s.attrs, s.attrs != nil)
	add("array_type", s.arrayType, s.arrayType != nil)
	return out
}

// Serialize returns an ordered object holding the present facets. Checks
// are not serialized.
func (s *ArraySchema) Serialize() any {
	om := orderedmap.New[string, any]()
	facets := s.facets()
	for _, key := range arraySlots {
		if f, ok := facets[key]; ok {
			om.Set(key, f.Serialize())
		}
	}
	return om
}

func (s *ArraySchema) MarshalJSON() ([]byte, error) { return marshal(s.Serialize()) }

func (s *ArraySchema) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject("array", data, arraySlots...)
	if err != nil {
		return err
	}
	var out ArraySchema
	decode := func(key string, target json.Unmarshaler) (bool, error) {
		msg, ok := raw[key]
		if !ok || isNull(msg) {
			return false, nil
		}
		if err := target.UnmarshalJSON(msg); err != nil {
			return false, unwrapInvalid(key, err)
		}
		return true, nil
	}

	dtype, dims, shape := &DTypeSchema{}, &DimsSchema{}, &ShapeSchema{}
	coords, name, chunks := &CoordsSchema{}, &NameSchema{}, &ChunksSchema{}
	attrs, arrayType := &AttrsSchema{}, &ArrayTypeSchema{}
	steps := []struct {
		key    string
		target json.Unmarshaler
		set    func()
	}{
		{"dtype", dtype, func() { out.dtype = dtype }},
		{"dims", dims, func() { out.dims = dims }},
		{"shape", shape, func() { out.shape = shape }},
		{"coords", coords, func() { out.coords = coords }},
		{"name", name, func() { out.name = name }},
		{"chunks", chunks, func() { out.chunks = chunks }},
		{"attrs", attrs, func() { out.attrs = attrs }},
		{"array_type", arrayType, func() { out.arrayType = arrayType }},
	}
	for _, step := range steps {
		ok, err := decode(step.key, step.target)
		if err != nil {
			return err
		}
		if ok {
			step.set()
		}
	}
	*s = out
	return nil
}

// DecodeArraySchema decodes a serialized ArraySchema.
func DecodeArraySchema(data []byte) (*ArraySchema, error) {
	s := &ArraySchema{}
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return s, nil
}
