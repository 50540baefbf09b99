package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/powerset/pkg/codec"
	"github.com/aretw0/powerset/pkg/domain"
)

func contractDocument() *codec.Document {
	return &codec.Document{
		Deterministic: true,
		States:        []string{"{0,1}", "{2}", "{}"},
		Alphabet:      []string{"a"},
		Transitions: []codec.TransitionDocument{
			{From: "{0,1}", Symbol: "a", To: "{2}"},
			{From: "{2}", Symbol: "a", To: "{}"},
			{From: "{}", Symbol: "a", To: "{}"},
		},
		Initial:   "{0,1}",
		Accepting: []string{"{2}"},
	}
}

// RunMachineStoreContract runs a suite of tests to verify that a MachineStore
// implementation adheres to the defined interface contract.
func RunMachineStoreContract(t *testing.T, store MachineStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		doc := contractDocument()
		require.NoError(t, store.Save(ctx, name, doc), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, doc, loaded)

		m, err := loaded.Machine()
		require.NoError(t, err, "stored document should still describe a valid machine")
		ok, err := m.(interface{ Accepts(string) (bool, error) }).Accepts("a")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Load Returns A Copy", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, contractDocument()))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		loaded.States[0] = "mutated"

		again, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "{0,1}", again.States[0])
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, contractDocument()))

		replacement := &codec.Document{
			States:      []string{"0"},
			Alphabet:    []string{"b"},
			Transitions: []codec.TransitionDocument{},
			Initial:     "0",
			Accepting:   []string{},
		}
		require.NoError(t, store.Save(ctx, name, replacement))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, replacement, loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrMachineNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, contractDocument()))
		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrMachineNotFound, "Load after Delete should return ErrMachineNotFound")

		assert.NoError(t, store.Delete(ctx, name), "deleting a missing name is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		require.NoError(t, store.Save(ctx, id2, contractDocument()))
		require.NoError(t, store.Save(ctx, id1, contractDocument()))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		require.Contains(t, names, id1)
		require.Contains(t, names, id2)
		assert.IsNonDecreasing(t, names)
	})

	t.Run("Names Shaped Like Internal Keys", func(t *testing.T) {
		// Backends keep indexes and locks next to the data; no machine
		// name may clobber them.
		tricky := []string{"idx", "index", "m:idx", "lock:machine:" + name, "machine." + name}
		for _, n := range tricky {
			require.NoError(t, store.Save(ctx, n, contractDocument()), "Save %q", n)
		}
		defer func() {
			for _, n := range tricky {
				_ = store.Delete(ctx, n)
			}
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		for _, n := range tricky {
			assert.Contains(t, names, n)
			loaded, err := store.Load(ctx, n)
			require.NoError(t, err, "Load %q", n)
			assert.Equal(t, contractDocument(), loaded)
		}
	})
}

// RunLockerContract verifies mutual exclusion and release for a DistributedLocker.
func RunLockerContract(t *testing.T, locker DistributedLocker) {
	ctx := context.Background()
	key := "contract-lock-" + time.Now().Format("20060102150405")

	t.Run("Lock and Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		require.NotNil(t, unlock)
		require.NoError(t, unlock(ctx))

		unlock, err = locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err, "lock should be acquirable again after release")
		require.NoError(t, unlock(ctx))
	})

	t.Run("Contention Respects Context", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		defer func() { _ = unlock(ctx) }()

		short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(short, key, 5*time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Serializes Holders", func(t *testing.T) {
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			holders int
			maxSeen int
		)
		for range 3 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, key+"-serial", 5*time.Second)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				holders++
				maxSeen = max(maxSeen, holders)
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)

				mu.Lock()
				holders--
				mu.Unlock()
				assert.NoError(t, unlock(ctx))
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxSeen)
	})
}
