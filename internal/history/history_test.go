package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenCreatesDatabase(t *testing.T) {
	store := setupTestStore(t)

	records, err := store.List(0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordAndList(t *testing.T) {
	store := setupTestStore(t)

	err := store.Record(Record{
		Kind:       "zone",
		ResourceID: "zone-01",
		Action:     "apply",
		Changed:    true,
		Msg:        "zone zone-01 created",
	})
	require.NoError(t, err)

	err = store.Record(Record{
		Kind:       "vnet",
		ResourceID: "myvnet",
		Action:     "delete",
		Check:      true,
		Changed:    true,
		Msg:        "vnet myvnet would be deleted",
	})
	require.NoError(t, err)

	records, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, rec := range records {
		assert.NotEmpty(t, rec.ID)
		assert.False(t, rec.RecordedAt.IsZero())
	}
}

func TestListNewestFirst(t *testing.T) {
	store := setupTestStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"zone-a", "zone-b", "zone-c"} {
		err := store.Record(Record{
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
			Kind:       "zone",
			ResourceID: id,
			Action:     "apply",
			Changed:    true,
			Msg:        "zone " + id + " created",
		})
		require.NoError(t, err)
	}

	records, err := store.List(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "zone-c", records[0].ResourceID)
	assert.Equal(t, "zone-b", records[1].ResourceID)
}

func TestRecordKeepsFlags(t *testing.T) {
	store := setupTestStore(t)

	err := store.Record(Record{
		Kind:       "subnet",
		ResourceID: "10.0.0.0/24",
		Action:     "apply",
		Check:      true,
		Changed:    false,
		Msg:        "subnet 10.0.0.0/24 already exists",
	})
	require.NoError(t, err)

	records, err := store.List(1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Check)
	assert.False(t, records[0].Changed)
	assert.Equal(t, "10.0.0.0/24", records[0].ResourceID)
}
