package bot

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, store HistoryStore) *Registry {
	t.Helper()
	table, err := DefaultTable()
	require.NoError(t, err)
	return NewRegistry(store, table, WithRand(rand.New(rand.NewSource(1))))
}

func TestRegistryAcquireReusesEngine(t *testing.T) {
	store := &stubStore{}
	reg := newTestRegistry(t, store)
	ctx := context.Background()

	session := reg.Acquire(ctx, "u1", "s1")
	_, err := session.Process(ctx, "I'm Bob")
	require.NoError(t, err)

	// Second acquire of the same pair must see the accumulated state.
	session = reg.Acquire(ctx, "u1", "s1")
	assert.Equal(t, "Bob", session.Snapshot().Name)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistrySessionsAreIsolated(t *testing.T) {
	reg := newTestRegistry(t, &stubStore{})
	ctx := context.Background()

	first := reg.Acquire(ctx, "u1", "s1")
	_, err := first.Process(ctx, "I'm Bob")
	require.NoError(t, err)

	second := reg.Acquire(ctx, "u1", "s2")
	assert.Empty(t, second.Snapshot().Name)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistryRemove(t *testing.T) {
	reg := newTestRegistry(t, &stubStore{})
	ctx := context.Background()

	session := reg.Acquire(ctx, "u1", "s1")
	_, err := session.Process(ctx, "I'm Bob")
	require.NoError(t, err)
	reg.Remove("u1", "s1")
	assert.Equal(t, 0, reg.Len())

	// The replacement engine rehydrates from the persisted history.
	session = reg.Acquire(ctx, "u1", "s1")
	assert.Equal(t, "Bob", session.Snapshot().Name)
	assert.Equal(t, 2, session.Snapshot().MessageCount)
}

func TestRegistryRemoveUserDropsAllSessions(t *testing.T) {
	reg := newTestRegistry(t, &stubStore{})
	ctx := context.Background()

	reg.Acquire(ctx, "u1", "s1")
	reg.Acquire(ctx, "u1", "s2")
	reg.Acquire(ctx, "u2", "s1")
	require.Equal(t, 3, reg.Len())

	reg.RemoveUser("u1")
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryConcurrentAcquire(t *testing.T) {
	reg := newTestRegistry(t, &stubStore{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session := reg.Acquire(ctx, "u1", "s1")
			_, err := session.Process(ctx, "quantum physics remains deeply mysterious")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, reg.Len())
	session := reg.Acquire(ctx, "u1", "s1")
	assert.Equal(t, 16, session.Snapshot().MessageCount)
}
