package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunksSchema_Bool(t *testing.T) {
	chunked, err := NewChunksSchema(Chunked(true))
	require.NoError(t, err)
	assert.NoError(t, chunked.Validate([][]int{{2, 2}}, []string{"x"}, []int{4}))
	requireSchemaError(t, chunked.Validate(nil, []string{"x"}, []int{4}), "chunks",
		"expected array to be chunked but it is not")

	unchunked, err := NewChunksSchema(Chunked(false))
	require.NoError(t, err)
	assert.NoError(t, unchunked.Validate(nil, []string{"x"}, []int{4}))
	requireSchemaError(t, unchunked.Validate([][]int{{2, 2}}, []string{"x"}, []int{4}), "chunks",
		"expected unchunked array but it is chunked")
}

func TestChunksSchema_Map(t *testing.T) {
	tests := []struct {
		name    string
		spec    ChunkMap
		chunks  [][]int
		shape   []int
		wantErr string
	}{
		{"whole dim single block", ChunkMap{"x": Size(WholeDim)}, [][]int{{4}}, []int{4}, ""},
		{"whole dim split", ChunkMap{"x": Size(WholeDim)}, [][]int{{1, 2, 1}}, []int{4}, "x chunks did not match: (1, 2, 1) != 4"},
		{"regular", ChunkMap{"x": Size(2)}, [][]int{{2, 2}}, []int{4}, ""},
		{"ragged tail", ChunkMap{"x": Size(2)}, [][]int{{2, 1}}, []int{3}, ""},
		{"oversized tail", ChunkMap{"x": Size(2)}, [][]int{{2, 2, 3}}, []int{7}, "x chunks did not match: (2, 2, 3) != 2"},
		{"irregular interior", ChunkMap{"x": Size(2)}, [][]int{{2, 3, 2}}, []int{7}, "x chunks did not match: (2, 3, 2) != 2"},
		{"exact blocks", ChunkMap{"x": Blocks(2, 1)}, [][]int{{2, 1}}, []int{3}, ""},
		{"blocks mismatch", ChunkMap{"x": Blocks(2, 1)}, [][]int{{2, 2}}, []int{4}, "x chunks did not match: (2, 2) != (2, 1)"},
		{"wildcard", ChunkMap{"x": AnyChunks}, [][]int{{3, 1}}, []int{4}, ""},
		{"unchunked", ChunkMap{"x": Size(2)}, nil, []int{4}, "expected array to be chunked but it is not"},
		{"missing dim", ChunkMap{"z": Size(2)}, [][]int{{2, 2}}, []int{4}, "z chunks did not match: dimension not present"},
		{"wildcard for missing dim", ChunkMap{"z": AnyChunks}, [][]int{{2, 2}}, []int{4}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewChunksSchema(tt.spec)
			require.NoError(t, err)
			err = s.Validate(tt.chunks, []string{"x"}, tt.shape)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			requireSchemaError(t, err, "chunks", tt.wantErr)
		})
	}
}

func TestChunksSchema_TwoDims(t *testing.T) {
	dims, shape := []string{"x", "y"}, []int{4, 10}

	s, err := NewChunksSchema(ChunkMap{"x": Size(2), "y": Size(5)})
	require.NoError(t, err)
	assert.NoError(t, s.Validate([][]int{{2, 2}, {5, 5}}, dims, shape))

	s, err = NewChunksSchema(ChunkMap{"x": Size(2), "y": Size(WholeDim)})
	require.NoError(t, err)
	requireSchemaError(t, s.Validate([][]int{{2, 2}, {5, 5}}, dims, shape), "chunks",
		"y chunks did not match: (5, 5) != 10")
}

func TestChunksFromValue(t *testing.T) {
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"x": 2, "y": [1, 2], "z": null, "w": -1}`), &decoded))
	s, err := ChunksFromValue(decoded)
	require.NoError(t, err)
	assert.True(t, s.IsMap())

	spec, ok := s.Spec("y")
	require.True(t, ok)
	assert.Equal(t, "(1, 2)", spec.String())

	invalid := []any{
		2,
		"auto",
		map[string]any{"x": "auto"},
		map[string]any{"x": 1.5},
		map[string]any{"x": []any{1, "a"}},
		map[string]any{"x": true},
	}
	for _, v := range invalid {
		_, err := ChunksFromValue(v)
		assert.ErrorIsf(t, err, ErrInvalidSchema, "value %#v", v)
	}

	_, err = NewChunksSchema(ChunkMap{"x": {}})
	assert.ErrorIs(t, err, ErrInvalidSchema)
	_, err = NewChunksSchema(ChunkMap(nil))
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestChunksSchema_JSON(t *testing.T) {
	decode := func(b []byte) (*ChunksSchema, error) {
		s := &ChunksSchema{}
		return s, s.UnmarshalJSON(b)
	}

	s, err := NewChunksSchema(ChunkMap{"x": Size(2), "y": Blocks(1, 2), "z": AnyChunks, "w": Size(WholeDim)})
	require.NoError(t, err)
	data := roundTrip(t, s, decode)
	assert.Equal(t, `{"w":-1,"x":2,"y":[1,2],"z":null}`, string(data))

	b, err := NewChunksSchema(Chunked(true))
	require.NoError(t, err)
	data = roundTrip(t, b, decode)
	assert.Equal(t, `true`, string(data))

	_, err = decode([]byte(`3`))
	assert.ErrorIs(t, err, ErrInvalidSchema)
	_, err = decode([]byte(`{"x": 2.5}`))
	assert.ErrorIs(t, err, ErrInvalidSchema)
}
