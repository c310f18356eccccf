package labeled

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/arrayschema/pkg/ndarray"
	"github.com/aretw0/arrayschema/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument_ArrayJSON(t *testing.T) {
	v, err := ParseDocument([]byte(`{
		"name": "temp",
		"dtype": "<f8",
		"dims": ["x", "y"],
		"shape": [4, 10],
		"chunks": [[2, 2], [5, 5]],
		"attrs": {"units": "K"},
		"coords": {"x": {"dtype": "int64", "dims": ["x"], "shape": [4]}}
	}`))
	require.NoError(t, err)
	a, ok := v.(*Array)
	require.True(t, ok)

	assert.Equal(t, "temp", a.Name())
	assert.Equal(t, schema.Float64, a.DType())
	assert.Equal(t, [][]int{{2, 2}, {5, 5}}, a.Chunks())
	assert.Equal(t, "K", a.Attrs()["units"])
	require.Contains(t, a.Coords(), "x")
	assert.Equal(t, "x", a.Coords()["x"].Name())
}

func TestParseDocument_TableYAML(t *testing.T) {
	v, err := ParseDocument([]byte(`
data_vars:
  foo:
    dtype: int32
    dims: [x]
    shape: [3]
  bar:
    dtype: bool
    shape: [3]
    array_type: chunked
attrs:
  title: example
`))
	require.NoError(t, err)
	tbl, ok := v.(*Table)
	require.True(t, ok)

	assert.Equal(t, []string{"bar", "foo"}, tbl.Names())
	bar, _ := tbl.Var("bar")
	assert.Equal(t, [][]int{{3}}, bar.Chunks())
	assert.Equal(t, []string{"dim_0"}, bar.Dims())
	assert.Equal(t, "example", tbl.Attrs()["title"])
}

func TestParseDocument_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown key":      `{"dtype": "int8", "shape": [1], "colour": "red"}`,
		"bad dtype":        `{"dtype": "int128", "shape": [1]}`,
		"chunk sum":        `{"dtype": "int8", "shape": [4], "chunks": [[2, 1]]}`,
		"dense chunks":     `{"dtype": "int8", "shape": [4], "chunks": [[2, 2]], "array_type": "dense"}`,
		"unknown backend":  `{"dtype": "int8", "shape": [4], "array_type": "sparse"}`,
		"not a mapping":    `[1, 2]`,
		"bad member":       `{"data_vars": {"a": {"dtype": "??", "shape": [1]}}}`,
		"dims cover shape": `{"dtype": "int8", "shape": [4], "dims": ["x", "y"]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDocument([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	a := newArray(t)
	chunked, err := a.Chunk(map[string]int{"y": 4})
	require.NoError(t, err)

	data, err := json.Marshal(chunked.Document())
	require.NoError(t, err)

	v, err := ParseDocument(data)
	require.NoError(t, err)
	back := v.(*Array)
	assert.Equal(t, chunked.Chunks(), back.Chunks())
	assert.Equal(t, chunked.Dims(), back.Dims())
	assert.Equal(t, chunked.DType(), back.DType())
	assert.IsType(t, &ndarray.Chunked{}, back.Data())

	tbl := NewTable(map[string]*Array{"foo": a})
	data, err = json.Marshal(tbl.Document())
	require.NoError(t, err)
	v, err = ParseDocument(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, v.(*Table).Names())
}
