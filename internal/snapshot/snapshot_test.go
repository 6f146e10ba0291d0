package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Priscasantos/landagri-b-api/internal/models"
)

func testSnapshot(ids ...string) *Snapshot {
	initiatives := make([]models.Initiative, 0, len(ids))
	for _, id := range ids {
		initiatives = append(initiatives, models.Initiative{ID: id})
	}
	return New(initiatives, nil, nil, nil, nil)
}

func TestStore_EmptyReturnsErrNotLoaded(t *testing.T) {
	store := NewStore()

	assert.False(t, store.Loaded())
	s, err := store.Current()
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestStore_SwapPublishes(t *testing.T) {
	store := NewStore()
	snap := testSnapshot("mapbiomas")
	store.Swap(snap)

	assert.True(t, store.Loaded())
	current, err := store.Current()
	require.NoError(t, err)
	assert.Same(t, snap, current)
}

// A reader holding the old snapshot keeps a consistent view across a swap.
func TestStore_OldSnapshotSurvivesSwap(t *testing.T) {
	store := NewStore()

	first := testSnapshot("first")
	store.Swap(first)
	held, err := store.Current()
	require.NoError(t, err)

	second := testSnapshot("second")
	store.Swap(second)

	_, ok := held.Initiative("first")
	assert.True(t, ok, "held snapshot must still serve its own data")
	_, ok = held.Initiative("second")
	assert.False(t, ok)

	current, err := store.Current()
	require.NoError(t, err)
	assert.Same(t, second, current)
	assert.NotEqual(t, first.Version, second.Version)
}

func TestSnapshot_InitiativeLookup(t *testing.T) {
	snap := testSnapshot("a", "b")

	init, ok := snap.Initiative("b")
	require.True(t, ok)
	assert.Equal(t, "b", init.ID)

	_, ok = snap.Initiative("missing")
	assert.False(t, ok)
}

func TestSnapshot_NilSensorCatalog(t *testing.T) {
	snap := New(nil, nil, nil, nil, nil)
	require.NotNil(t, snap.Sensors)
	assert.Equal(t, 0, snap.Sensors.Len())
	assert.NotEmpty(t, snap.Version)
	assert.False(t, snap.LoadedAt.IsZero())
}
