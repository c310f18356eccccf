package schema

import (
	"testing"

	"github.com/aretw0/arrayschema/pkg/ndarray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArray struct {
	dtype  DType
	name   string
	dims   []string
	shape  []int
	coords map[string]Array
	chunks [][]int
	attrs  map[string]any
	data   any
}

func (a *fakeArray) DType() DType             { return a.dtype }
func (a *fakeArray) Name() string             { return a.name }
func (a *fakeArray) Dims() []string           { return a.dims }
func (a *fakeArray) Shape() []int             { return a.shape }
func (a *fakeArray) Coords() map[string]Array { return a.coords }
func (a *fakeArray) Chunks() [][]int          { return a.chunks }
func (a *fakeArray) Attrs() map[string]any    { return a.attrs }
func (a *fakeArray) Data() any                { return a.data }

type fakeTable struct {
	vars   map[string]Array
	coords map[string]Array
	attrs  map[string]any
}

func (t *fakeTable) DataVars() map[string]Array { return t.vars }
func (t *fakeTable) Coords() map[string]Array   { return t.coords }
func (t *fakeTable) Attrs() map[string]any      { return t.attrs }

func newFake(t *testing.T) *fakeArray {
	t.Helper()
	data, err := ndarray.NewDense(4, 10)
	require.NoError(t, err)
	return &fakeArray{
		dtype: Int64,
		name:  "foo",
		dims:  []string{"x", "y"},
		shape: []int{4, 10},
		attrs: map[string]any{"units": "m"},
		data:  data,
	}
}

// requireSchemaError asserts err is a *SchemaError from facet whose message
// contains msg.
func requireSchemaError(t *testing.T, err error, facet, msg string) {
	t.Helper()
	require.Error(t, err)
	se, ok := err.(*SchemaError)
	require.Truef(t, ok, "expected *SchemaError, got %T: %v", err, err)
	assert.Equal(t, facet, se.Facet)
	assert.Contains(t, se.Error(), msg)
}

// roundTrip marshals v, decodes it with decode and checks that the result
// marshals to the same bytes.
func roundTrip[T interface{ MarshalJSON() ([]byte, error) }](t *testing.T, v T, decode func([]byte) (T, error)) []byte {
	t.Helper()
	first, err := v.MarshalJSON()
	require.NoError(t, err)
	decoded, err := decode(first)
	require.NoError(t, err)
	second, err := decoded.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	return first
}
