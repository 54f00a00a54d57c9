package mediapager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryPreferenceStore_GetSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPreferenceStore()

	got, err := store.GetPreference(ctx, "liked-artists")
	require.NoError(t, err)
	assert.Nil(t, got)

	spec := &SortSpec{SortBy: "title", SortOrder: Descending}
	require.NoError(t, store.SetPreference(ctx, "liked-artists", spec))

	got, err = store.GetPreference(ctx, "liked-artists")
	require.NoError(t, err)
	assert.Equal(t, spec, got)

	got.SortBy = "mutated"
	again, _ := store.GetPreference(ctx, "liked-artists")
	assert.Equal(t, "title", again.SortBy)

	require.NoError(t, store.SetPreference(ctx, "liked-artists", nil))
	got, err = store.GetPreference(ctx, "liked-artists")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func Test_MemoryPreferenceStore_SetPreference_Invalid(t *testing.T) {
	store := NewMemoryPreferenceStore()

	err := store.SetPreference(context.Background(), "src", &SortSpec{SortBy: "title"})
	assert.Error(t, err)
}

func Test_MemoryPreferenceStore_Observe(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPreferenceStore()

	changes, unsubscribe := store.ObservePreferenceChanges("albums")
	other, unsubscribeOther := store.ObservePreferenceChanges("tracks")
	defer unsubscribeOther()

	require.NoError(t, store.SetPreference(ctx, "albums", &SortSpec{SortBy: "title", SortOrder: Ascending}))
	require.NoError(t, store.SetPreference(ctx, "albums", nil))

	assert.Equal(t, &SortSpec{SortBy: "title", SortOrder: Ascending}, <-changes)
	assert.Nil(t, <-changes)
	assert.Empty(t, other)

	unsubscribe()
	unsubscribe()
	_, open := <-changes
	assert.False(t, open)

	require.NoError(t, store.SetPreference(ctx, "albums", &SortSpec{SortBy: "artist", SortOrder: Ascending}))
}

func Test_preferenceBroadcaster_publish_DropsOldestWhenFull(t *testing.T) {
	var b preferenceBroadcaster
	ch, unsubscribe := b.subscribe("src")
	defer unsubscribe()

	for i := 0; i < subscriberBuffer+2; i++ {
		b.publish("src", &SortSpec{SortBy: "k" + string(rune('a'+i)), SortOrder: Ascending})
	}

	require.Len(t, ch, subscriberBuffer)
	assert.Equal(t, "kc", (<-ch).SortBy)
}
