package cache

import (
	"testing"
	"time"

	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(t.TempDir(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func trip(id int) *model.Trip {
	return &model.Trip{
		ID:              id,
		CurrentLocation: "Chicago, IL",
		DropoffLocation: "Denver, CO",
		TotalDistance:   1620,
		DailyLogs:       []model.DailyLogSummary{{Date: "2024-05-01", DrivingHours: 9.5, TotalCycleHours: 30}},
	}
}

func TestSQLiteCache_SetAndGet(t *testing.T) {
	c := newTestCache(t, 0)

	require.NoError(t, c.Set(trip(4)))

	result := c.Get(4)
	require.True(t, result.Found)
	assert.Equal(t, MissReasonNone, result.MissReason)
	assert.Equal(t, 1620.0, result.Trip.TotalDistance)
	require.Len(t, result.Trip.DailyLogs, 1)
}

func TestSQLiteCache_GetMissing(t *testing.T) {
	c := newTestCache(t, 0)

	result := c.Get(99)
	assert.False(t, result.Found)
	assert.Equal(t, MissReasonNotFound, result.MissReason)
	assert.Equal(t, "not found", result.MissReason.String())
}

func TestSQLiteCache_PersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()

	first, err := NewSQLiteCache(dir, 0)
	require.NoError(t, err)
	require.NoError(t, first.SetAll([]*model.Trip{trip(2), trip(1)}))
	require.NoError(t, first.Close())

	second, err := NewSQLiteCache(dir, 0)
	require.NoError(t, err)
	defer second.Close()

	result := second.Get(2)
	require.True(t, result.Found)
	assert.Equal(t, 2, result.Trip.ID)

	trips, err := second.List()
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, 1, trips[0].ID)
	assert.Equal(t, 2, trips[1].ID)

	require.NoError(t, second.Preload())
	mem, disk := second.Stats()
	assert.Equal(t, 2, mem)
	assert.Equal(t, 2, disk)
}

func TestSQLiteCache_Upsert(t *testing.T) {
	c := newTestCache(t, 0)

	require.NoError(t, c.Set(trip(1)))
	updated := trip(1)
	updated.TotalDistance = 2000
	require.NoError(t, c.Set(updated))

	trips, err := c.List()
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, 2000.0, trips[0].TotalDistance)
}

func TestSQLiteCache_Expiry(t *testing.T) {
	c := newTestCache(t, 24*time.Hour)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(trip(1)))

	assert.True(t, c.Get(1).Found)

	now = now.Add(25 * time.Hour)
	result := c.Get(1)
	assert.False(t, result.Found)
	assert.Equal(t, MissReasonExpired, result.MissReason)

	trips, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, trips)
}

func TestSQLiteCache_Clear(t *testing.T) {
	c := newTestCache(t, 0)
	require.NoError(t, c.SetAll([]*model.Trip{trip(1), trip(2)}))

	require.NoError(t, c.Clear())

	assert.False(t, c.Get(1).Found)
	trips, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, trips)
}

func TestNewSQLiteCache_InvalidDirectory(t *testing.T) {
	_, err := NewSQLiteCache("/dev/null/cache", 0)
	assert.Error(t, err)
}
