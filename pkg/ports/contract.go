package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arrayschema/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSchemaStoreContract runs a suite of tests to verify that a SchemaStore
// implementation adheres to the interface contract.
func RunSchemaStoreContract(t *testing.T, store SchemaStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	arrayDoc, err := NewDocument(schema.MustArraySchema(
		schema.WithDType(schema.Int32),
		schema.WithDims(schema.Dims{"x", ""}),
	))
	require.NoError(t, err)
	tableDoc, err := NewDocument(schema.MustTableSchema(schema.WithDataVar("a", nil)))
	require.NoError(t, err)

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, arrayDoc), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, schema.DocArray, loaded.Kind)
		assert.JSONEq(t, string(arrayDoc.Schema), string(loaded.Schema))

		v, err := loaded.Decode()
		require.NoError(t, err)
		assert.Equal(t, schema.DocArray, v.DocKind())
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, tableDoc))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, schema.DocTable, loaded.Kind)
		assert.JSONEq(t, string(tableDoc.Schema), string(loaded.Schema))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+name)
		assert.ErrorIs(t, err, ErrSchemaNotFound)
	})

	t.Run("Invalid Name", func(t *testing.T) {
		assert.ErrorIs(t, store.Save(ctx, "../escape", arrayDoc), ErrInvalidName)
		_, err := store.Load(ctx, "a/b")
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, arrayDoc))
		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, ErrSchemaNotFound, "Load after Delete should return ErrSchemaNotFound")

		assert.NoError(t, store.Delete(ctx, name), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		require.NoError(t, store.Save(ctx, id2, arrayDoc))
		require.NoError(t, store.Save(ctx, id1, tableDoc))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
		assert.IsNonDecreasing(t, names)
	})
}
