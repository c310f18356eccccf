package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arrayschema/pkg/adapters/memory"
	"github.com/aretw0/arrayschema/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSchemaStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	raw := []byte(`{"dtype":"<i4"}`)
	require.NoError(t, store.Save(ctx, "a", ports.Document{Kind: "array", Schema: raw}))
	raw[2] = 'X'

	doc, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, `{"dtype":"<i4"}`, string(doc.Schema))
}

func TestLocker(t *testing.T) {
	ctx := context.Background()
	l := memory.NewLocker()

	unlock, err := l.Lock(ctx, "a", 0)
	require.NoError(t, err)

	other, err := l.Lock(ctx, "b", 0)
	require.NoError(t, err, "different keys do not contend")
	require.NoError(t, other(ctx))

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(short, "a", 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	acquired := make(chan struct{})
	go func() {
		u, err := l.Lock(ctx, "a", 0)
		if err == nil {
			_ = u(ctx)
		}
		close(acquired)
	}()
	require.NoError(t, unlock(ctx))
	require.NoError(t, unlock(ctx), "unlock is idempotent")

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter did not acquire the lock after unlock")
	}
}
