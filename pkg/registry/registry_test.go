package registry_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/arrayschema/pkg/adapters/memory"
	"github.com/aretw0/arrayschema/pkg/labeled"
	"github.com/aretw0/arrayschema/pkg/ndarray"
	"github.com/aretw0/arrayschema/pkg/observability"
	"github.com/aretw0/arrayschema/pkg/ports"
	"github.com/aretw0/arrayschema/pkg/registry"
	"github.com/aretw0/arrayschema/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tempSchema = `{"dtype": "<f8", "dims": ["x", "y"], "name": "temp"}`

func newTemp(t *testing.T, dtype schema.DType) *labeled.Array {
	t.Helper()
	data, err := ndarray.NewDense(2, 3)
	require.NoError(t, err)
	a, err := labeled.NewArray(dtype, data, labeled.WithName("temp"), labeled.WithDims("x", "y"))
	require.NoError(t, err)
	return a
}

func TestRegistry_PutGetListDelete(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(memory.NewStore())

	doc, err := reg.Put(ctx, "temps", []byte(tempSchema))
	require.NoError(t, err)
	assert.Equal(t, schema.DocArray, doc.Kind)

	got, err := reg.Get(ctx, "temps")
	require.NoError(t, err)
	assert.JSONEq(t, tempSchema, string(got.Schema))

	names, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"temps"}, names)

	require.NoError(t, reg.Delete(ctx, "temps"))
	_, err = reg.Get(ctx, "temps")
	assert.ErrorIs(t, err, ports.ErrSchemaNotFound)
}

func TestRegistry_PutRejectsMalformed(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(memory.NewStore())

	tests := []struct {
		name string
		data string
	}{
		{"not an object", `[1, 2]`},
		{"bad dtype", `{"dtype": 3}`},
		{"unknown key", `{"dtype": "<i4", "colour": "red"}`},
		{"bad kind", `{"kind": "dims", "schema": ["x"]}`},
		{"bad yaml", "dtype: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Put(ctx, "bad", []byte(tt.data))
			assert.ErrorIs(t, err, schema.ErrInvalidSchema)
		})
	}

	names, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names, "nothing malformed is stored")

	_, err = reg.Put(ctx, "../x", []byte(tempSchema))
	assert.ErrorIs(t, err, ports.ErrInvalidName)
}

func TestRegistry_Create(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(memory.NewStore(), registry.WithLocker(memory.NewLocker()))

	_, err := reg.Create(ctx, "temps", []byte(tempSchema))
	require.NoError(t, err)
	_, err = reg.Create(ctx, "temps", []byte(tempSchema))
	assert.ErrorIs(t, err, registry.ErrSchemaExists)
}

func TestRegistry_CreateConcurrent(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(memory.NewStore(), registry.WithLocker(memory.NewLocker()))

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = reg.Create(ctx, "once", []byte(tempSchema))
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, registry.ErrSchemaExists)
	}
	assert.Equal(t, 1, created)
}

func TestRegistry_Validate(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(memory.NewStore())
	_, err := reg.Put(ctx, "temps", []byte(tempSchema))
	require.NoError(t, err)

	require.NoError(t, reg.Validate(ctx, "temps", newTemp(t, schema.Float64)))

	err = reg.Validate(ctx, "temps", newTemp(t, schema.Int32))
	var se *schema.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "dtype", se.Facet)
	assert.Contains(t, err.Error(), "dtype int32 != float64")

	err = reg.Validate(ctx, "missing", newTemp(t, schema.Float64))
	assert.ErrorIs(t, err, ports.ErrSchemaNotFound)
}

func TestRegistry_CacheInvalidation(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(memory.NewStore())
	_, err := reg.Put(ctx, "temps", []byte(tempSchema))
	require.NoError(t, err)

	v1, err := reg.Compile(ctx, "temps")
	require.NoError(t, err)
	v2, err := reg.Compile(ctx, "temps")
	require.NoError(t, err)
	assert.Same(t, v1, v2)

	require.NoError(t, reg.PutSchema(ctx, "temps", schema.MustArraySchema(schema.WithDType(schema.Int32))))
	assert.NoError(t, reg.Validate(ctx, "temps", newTemp(t, schema.Int32)))
}

// pausingStore holds the next Load after it has read the document until
// release is closed.
type pausingStore struct {
	ports.SchemaStore

	mu      sync.Mutex
	loaded  chan struct{}
	release chan struct{}
}

func (s *pausingStore) pauseNextLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = make(chan struct{})
	s.release = make(chan struct{})
}

func (s *pausingStore) Load(ctx context.Context, name string) (ports.Document, error) {
	doc, err := s.SchemaStore.Load(ctx, name)

	s.mu.Lock()
	loaded, release := s.loaded, s.release
	s.loaded = nil
	s.mu.Unlock()

	if loaded != nil {
		close(loaded)
		<-release
	}
	return doc, err
}

func TestRegistry_CompileRacingWrite(t *testing.T) {
	ctx := context.Background()
	store := &pausingStore{SchemaStore: memory.NewStore()}
	reg := registry.New(store)

	_, err := reg.Put(ctx, "s", []byte(`{"dtype": "int32"}`))
	require.NoError(t, err)

	store.pauseNextLoad()
	loaded, release := store.loaded, store.release
	done := make(chan error, 1)
	go func() {
		_, err := reg.Compile(ctx, "s")
		done <- err
	}()

	// The old document is read, then replaced before Compile can cache it.
	<-loaded
	_, err = reg.Put(ctx, "s", []byte(`{"dtype": "<f8"}`))
	require.NoError(t, err)
	close(release)
	require.NoError(t, <-done)

	assert.NoError(t, reg.Validate(ctx, "s", newTemp(t, schema.Float64)))
	err = reg.Validate(ctx, "s", newTemp(t, schema.Int32))
	assert.ErrorContains(t, err, "dtype int32 != float64")
}

func TestRegistry_ValidateDocument(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(memory.NewStore())
	_, err := reg.Put(ctx, "ds", []byte(`
kind: table
schema:
  data_vars:
    temp:
      dtype: float64
      dims: [x]
`))
	require.NoError(t, err)

	require.NoError(t, reg.ValidateDocument(ctx, "ds", []byte(`
data_vars:
  temp: {dtype: float64, dims: [x], shape: [4]}
`)))

	err = reg.ValidateDocument(ctx, "ds", []byte(`{"data_vars": {"rain": {"dtype": "float64", "shape": [4]}}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data variable temp not in ds")

	err = reg.ValidateDocument(ctx, "ds", []byte(`{"data_vars": {"temp": {"dtype": "nope", "shape": [4]}}}`))
	assert.Error(t, err)
	assert.False(t, schema.IsSchemaError(err))
}

func TestRegistry_Hooks(t *testing.T) {
	ctx := context.Background()
	var events []observability.ValidationEvent
	var started int
	hooks := observability.Hooks{
		OnValidateStart: func(context.Context, *observability.ValidationEvent) { started++ },
		OnValidate: func(_ context.Context, e *observability.ValidationEvent) {
			events = append(events, *e)
		},
	}
	reg := registry.New(memory.NewStore(), registry.WithHooks(hooks))
	_, err := reg.Put(ctx, "temps", []byte(tempSchema))
	require.NoError(t, err)

	_ = reg.Validate(ctx, "temps", newTemp(t, schema.Float64))
	_ = reg.Validate(ctx, "temps", newTemp(t, schema.Int32))
	_ = reg.Validate(ctx, "missing", newTemp(t, schema.Float64))

	assert.Equal(t, 3, started)
	require.Len(t, events, 3)
	assert.Equal(t, observability.ResultValid, events[0].Result)
	assert.Equal(t, "array", events[0].Kind)
	assert.Equal(t, observability.ResultInvalid, events[1].Result)
	assert.Equal(t, "dtype", events[1].Facet)
	assert.Equal(t, observability.ResultError, events[2].Result)
	assert.True(t, errors.Is(events[2].Err, ports.ErrSchemaNotFound))
}
