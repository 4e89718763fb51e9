package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchstats/goalvalue/internal/models"
	"github.com/pitchstats/goalvalue/internal/wintable"
)

func newTestStore(t *testing.T) *LookupStore {
	return NewLookupStore(newTestDB(t), nil, time.Hour, testLogger())
}

func TestPersistLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	table := wintable.NewTable()
	table.Set(1, -3, 0.012)
	table.Set(45, 0, 0.5)
	table.Set(45, 1, 0.75)
	table.Set(95, 5, 1.0)

	require.NoError(t, store.Persist(table))

	loaded, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, table.Len(), loaded.Len())
	table.Each(func(minute, scoreDiff int, p float64) {
		got, ok := loaded.Get(minute, scoreDiff)
		assert.True(t, ok, "missing cell (%d, %d)", minute, scoreDiff)
		assert.Equal(t, p, got)
	})
}

func TestPersistReplacesWholesale(t *testing.T) {
	store := newTestStore(t)

	first := wintable.NewTable()
	first.Set(10, 0, 0.4)
	first.Set(11, 0, 0.41)
	require.NoError(t, store.Persist(first))

	second := wintable.NewTable()
	second.Set(45, 1, 0.75)
	require.NoError(t, store.Persist(second))

	loaded, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, 1, loaded.Len())
	_, ok := loaded.Get(10, 0)
	assert.False(t, ok, "rows from the previous build must be gone")
}

func TestPersistEmptyTableClears(t *testing.T) {
	store := newTestStore(t)

	table := wintable.NewTable()
	table.Set(45, 0, 0.5)
	require.NoError(t, store.Persist(table))
	require.NoError(t, store.Persist(wintable.NewTable()))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestSaveMetadataAppends(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveMetadata(120, "1", []int64{3, 7}, []string{"event 9: cannot attribute scoring side"}))
	require.NoError(t, store.SaveMetadata(240, "1", []int64{3, 7, 8}, nil))

	var runs []models.RebuildRun
	require.NoError(t, store.db.Order("total_goals_processed").Find(&runs).Error)

	require.Len(t, runs, 2)
	assert.Equal(t, 120, runs[0].TotalGoalsProcessed)
	assert.Equal(t, "1", runs[0].Version)
	assert.NotEqual(t, runs[0].ID, runs[1].ID)
	assert.Equal(t, 240, runs[1].TotalGoalsProcessed)
}
