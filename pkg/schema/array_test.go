package schema

import (
	"errors"
	"testing"

	"github.com/aretw0/arrayschema/pkg/ndarray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArraySchema_Conforming(t *testing.T) {
	arr := newFake(t)
	s, err := NewArraySchema(
		WithDType(Integer),
		WithName(Name("foo")),
		WithDims(Dims{"x", ""}),
		WithShape(Shape{4, AnySize}),
		WithChunks(Chunked(false)),
		WithAttrs(Attrs{"units": AttrValue("m")}),
		WithArrayType(DenseArray),
	)
	require.NoError(t, err)
	assert.NoError(t, s.Validate(arr))
}

func TestArraySchema_FacetOrder(t *testing.T) {
	s := MustArraySchema(
		WithDType(Int32),
		WithName(Name("bar")),
		WithDims(Dims{"a", "b"}),
		WithShape(Shape{1, 1}),
		WithChunks(Chunked(true)),
		WithAttrs(Attrs{"missing": nil}),
		WithArrayType(ChunkedArray),
	)
	arr := newFake(t)

	// fix one facet at a time; the next facet in order reports
	steps := []struct {
		facet string
		msg   string
		fix   func()
	}{
		{"dtype", "dtype int64 != int32", func() { arr.dtype = Int32 }},
		{"name", "name foo != bar", func() { arr.name = "bar" }},
		{"dims", "dim mismatch in axis 0: x != a", func() { arr.dims = []string{"a", "b"} }},
		{"shape", "shape mismatch in axis 0: 4 != 1", func() { arr.shape = []int{1, 1} }},
		{"chunks", "expected array to be chunked but it is not", func() { arr.chunks = [][]int{{1}, {1}} }},
		{"attrs", "attrs has missing keys: [missing]", func() { arr.attrs["missing"] = true }},
		{"array_type", "array_type *ndarray.Dense != *ndarray.Chunked", func() {
			c, err := ndarray.NewChunked([]int{1, 1}, [][]int{{1}, {1}})
			require.NoError(t, err)
			arr.data = c
		}},
	}
	for _, step := range steps {
		requireSchemaError(t, s.Validate(arr), step.facet, step.msg)
		step.fix()
	}
	assert.NoError(t, s.Validate(arr))
}

func TestArraySchema_Coords(t *testing.T) {
	arr := newFake(t)
	arr.coords = map[string]Array{
		"x": &fakeArray{dtype: Float64, name: "x", dims: []string{"x"}, shape: []int{4}},
	}

	s := MustArraySchema(WithCoords(Coords{"x": MustArraySchema(WithDType(Floating))}))
	assert.NoError(t, s.Validate(arr))

	s = MustArraySchema(WithCoords(Coords{"x": MustArraySchema(WithDType(Int64))}))
	err := s.Validate(arr)
	requireSchemaError(t, err, "dtype", "coords.x: dtype float64 != int64")

	s = MustArraySchema(WithCoords(Coords{"x": nil, "y": nil}))
	requireSchemaError(t, s.Validate(arr), "coords", "coords has missing keys: [y]")

	cs, err := NewCoordsSchema(Coords{"y": nil}, RequireAllKeys(false), AllowExtraKeys(false))
	require.NoError(t, err)
	s = MustArraySchema(WithCoords(cs))
	requireSchemaError(t, s.Validate(arr), "coords", "coords has extra keys: [x]")
}

func TestArraySchema_Checks(t *testing.T) {
	errTooSmall := errors.New("too small")
	calls := 0
	s := MustArraySchema(
		WithDType(Int64),
		WithChecks(
			func(a Array) error { calls++; return nil },
			func(a Array) error {
				calls++
				if a.Shape()[0] < 10 {
					return errTooSmall
				}
				return nil
			},
		),
	)

	arr := newFake(t)
	err := s.Validate(arr)
	assert.Same(t, errTooSmall, err)
	assert.Equal(t, 2, calls)

	arr.dtype = Float32
	calls = 0
	requireSchemaError(t, s.Validate(arr), "dtype", "dtype float32 != int64")
	assert.Zero(t, calls)

	_, err = NewArraySchema(WithChecks(nil))
	require.ErrorIs(t, err, ErrInvalidSchema)
	assert.Contains(t, err.Error(), "all checks must be callables")
}

func TestArraySchema_InvalidInput(t *testing.T) {
	s := MustArraySchema()
	requireSchemaError(t, s.Validate("not an array"), "input", "input must be a labeled array")
	requireSchemaError(t, s.Validate(nil), "input", "input must be a labeled array")

	var typedNil *fakeArray
	requireSchemaError(t, s.Validate(typedNil), "input", "input must be a labeled array")

	arr := newFake(t)
	arr.coords = map[string]Array{"x": typedNil}
	s = MustArraySchema(WithCoords(Coords{"x": nil}))
	requireSchemaError(t, s.Validate(arr), "coords", "coordinate x is nil")
}

func TestArraySchema_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  ArrayOption
	}{
		{"dtype name", WithDType(DTypeName("int128"))},
		{"array type", WithArrayType(ArrayTypeName("numpy.ndarray"))},
		{"nil dims", WithDims(nil)},
		{"nil dims slice", WithDims(Dims(nil))},
		{"zero chunk spec", WithChunks(ChunkMap{"x": {}})},
		{"attr type", WithAttrs(Attrs{"a": AttrOfType("date")})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewArraySchema(tt.opt)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
	assert.Panics(t, func() { MustArraySchema(WithDType(DTypeName("bogus"))) })
}

func TestArraySchema_Normalize(t *testing.T) {
	dims := NewDimsSchema("x")
	a := MustArraySchema(WithDims(dims))
	b := MustArraySchema(WithDims(Dims{"x"}))
	assert.Same(t, dims, a.Dims())
	assert.Equal(t, a.Dims().Dims(), b.Dims().Dims())

	c, err := a.With(WithName(Name("foo")))
	require.NoError(t, err)
	assert.Nil(t, a.Name())
	assert.Equal(t, "foo", c.Name().Name())
}

func TestArrayType(t *testing.T) {
	dense, err := ndarray.NewDense(2)
	require.NoError(t, err)

	s, err := NewArrayTypeSchema(ArrayTypeFor[ndarray.Buffer]())
	require.NoError(t, err)
	assert.NoError(t, s.Validate(dense))
	requireSchemaError(t, s.Validate([]float64{1}), "array_type", "array_type []float64 != ndarray.Buffer")

	_, err = ParseArrayType("<class 'numpy.ndarray'>")
	require.ErrorIs(t, err, ErrInvalidSchema)
	assert.Contains(t, err.Error(), "unknown array_type: <class 'numpy.ndarray'>")

	assert.Equal(t, []string{"*ndarray.Chunked", "*ndarray.Dense"}, ArrayTypeNames())
}

func TestArraySchema_JSON(t *testing.T) {
	s := MustArraySchema(
		WithArrayType(DenseArray),
		WithAttrs(Attrs{"units": AttrValue("m")}),
		WithChunks(ChunkMap{"x": Size(2)}),
		WithName(Name("foo")),
		WithCoords(Coords{"x": MustArraySchema(WithDType(Int64))}),
		WithShape(Shape{4, AnySize}),
		WithDims(Dims{"x", ""}),
		WithDType(Int32),
	)
	data := roundTrip(t, s, DecodeArraySchema)
	want := `{"dtype":"<i4","dims":["x",null],"shape":[4,null],` +
		`"coords":{"require_all_keys":true,"allow_extra_keys":true,"coords":{"x":{"dtype":"<i8"}}},` +
		`"name":"foo","chunks":{"x":2},` +
		`"attrs":{"require_all_keys":true,"allow_extra_keys":true,"attrs":{"units":{"type":null,"value":"m"}}},` +
		`"array_type":"*ndarray.Dense"}`
	assert.Equal(t, want, string(data))

	empty := roundTrip(t, MustArraySchema(), DecodeArraySchema)
	assert.Equal(t, `{}`, string(empty))
}

func TestDecodeArraySchema_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown key":        `{"dtype":"<i4","units":"m"}`,
		"unknown array type": `{"array_type":"<class 'dask.array.core.Array'>"}`,
		"bad chunks":         `{"chunks":4}`,
		"bad dtype":          `{"dtype":"nope"}`,
		"not an object":      `[1,2]`,
		"nested coords":      `{"coords":{"coords":{"x":{"dtype":"bogus"}}}}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeArraySchema([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}
