package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentSchema_AllKinds(t *testing.T) {
	for _, kind := range DocumentKinds() {
		s, err := DocumentSchema(kind)
		require.NoErrorf(t, err, "kind %s", kind)
		assert.NotNil(t, s)
	}
	_, err := DocumentSchema("matrix")
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestCheckJSON(t *testing.T) {
	tests := []struct {
		kind  DocumentKind
		doc   string
		valid bool
	}{
		{DocDType, `"<i4"`, true},
		{DocDType, `4`, false},
		{DocDims, `["x", null]`, true},
		{DocDims, `["x", 1]`, false},
		{DocShape, `[4, null]`, true},
		{DocShape, `[4.5]`, false},
		{DocChunks, `true`, true},
		{DocChunks, `{"x": 2, "y": [1, 2], "z": null}`, true},
		{DocChunks, `{"x": "auto"}`, false},
		{DocArrayType, `"*ndarray.Dense"`, true},
		{DocArrayType, `"numpy.ndarray"`, false},
		{DocAttr, `{"type": "string", "value": "m"}`, true},
		{DocAttr, `{"type": "date"}`, false},
		{DocAttrs, `{"require_all_keys": true, "attrs": {"a": {"type": null, "value": 1}}}`, true},
		{DocAttrs, `{"require_all_keys": "yes"}`, false},
		{DocArray, `{"dtype": "<f8", "dims": ["x"], "chunks": {"x": -1}}`, true},
		{DocArray, `{"dims": "x"}`, false},
		{DocTable, `{"data_vars": {"a": {"dtype": "<f8"}, "b": null}, "attrs": {}}`, true},
		{DocTable, `{"data_vars": {"a": {"shape": ["x"]}}}`, false},
		{DocTable, `not json`, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+" "+tt.doc, func(t *testing.T) {
			err := CheckJSON(tt.kind, []byte(tt.doc))
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidSchema)
			}
		})
	}
}

func TestCheckDocument_SerializedSchemas(t *testing.T) {
	arr := MustArraySchema(
		WithDType(Integer),
		WithDims(Dims{"x", ""}),
		WithChunks(ChunkMap{"x": Blocks(2, 2)}),
		WithAttrs(Attrs{"units": AttrOfType(StringAttr)}),
		WithArrayType(ChunkedArray),
		WithCoords(Coords{"x": MustArraySchema(WithDType(Float64))}),
	)
	assert.NoError(t, CheckDocument(DocArray, arr))

	tbl := MustTableSchema(WithDataVar("a", arr), WithDataVar("b", nil))
	assert.NoError(t, CheckDocument(DocTable, tbl))
}

func TestDecode(t *testing.T) {
	v, err := Decode(DocArray, []byte(`{"dtype":"int32"}`))
	require.NoError(t, err)
	assert.Equal(t, DocArray, v.DocKind())

	v, err = Decode(DocTable, []byte(`{"data_vars":{"a":null}}`))
	require.NoError(t, err)
	assert.Equal(t, DocTable, v.DocKind())
	assert.Equal(t, "table schema with 1 data variables", Describe(v))

	_, err = Decode(DocDims, []byte(`["x"]`))
	assert.ErrorIs(t, err, ErrInvalidSchema)
	_, err = Decode(DocArray, []byte(`{"dims":"x"}`))
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestMarshalIndent(t *testing.T) {
	data, err := MarshalIndent(MustArraySchema(WithDType(Int8)), "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"dtype\": \"|i1\"\n}", string(data))
}
