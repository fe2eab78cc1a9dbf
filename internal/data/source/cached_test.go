package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/penwyp/go-eld-planner/internal/data/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	trips []*model.Trip
	err   error
	calls int
}

func (f *fakeRemote) List(context.Context) ([]*model.Trip, error) {
	f.calls++
	return f.trips, f.err
}

func (f *fakeRemote) Get(_ context.Context, id int) (*model.Trip, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return findTrip(f.trips, id)
}

func (f *fakeRemote) Create(_ context.Context, req model.TripRequest) (*model.Trip, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	trip := &model.Trip{ID: 100, CurrentLocation: req.CurrentLocation}
	f.trips = append(f.trips, trip)
	return trip, nil
}

func newCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewSQLiteCache(t.TempDir(), 24*time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCachedSource_WritesThroughAndFallsBack(t *testing.T) {
	remote := &fakeRemote{trips: []*model.Trip{{ID: 1}, {ID: 2}}}
	c := newCache(t)
	src := NewCachedSource(remote, c, false)

	trips, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, trips, 2)

	remote.err = errors.New("connection refused")
	trips, err = src.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, trips, 2)

	trip, err := src.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, trip.ID)
}

func TestCachedSource_RemoteErrorWithEmptyCache(t *testing.T) {
	remote := &fakeRemote{err: errors.New("connection refused")}
	src := NewCachedSource(remote, newCache(t), false)

	_, err := src.List(context.Background())
	assert.ErrorContains(t, err, "connection refused")

	_, err = src.Get(context.Background(), 1)
	assert.ErrorContains(t, err, "connection refused")
}

func TestCachedSource_NotFoundIsNotMasked(t *testing.T) {
	remote := &fakeRemote{trips: []*model.Trip{{ID: 1}}}
	src := NewCachedSource(remote, newCache(t), false)

	_, err := src.Get(context.Background(), 9)
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestCachedSource_Offline(t *testing.T) {
	c := newCache(t)
	require.NoError(t, c.Set(&model.Trip{ID: 4}))

	remote := &fakeRemote{}
	src := NewCachedSource(remote, c, true)

	trips, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, trips, 1)

	_, err = src.Get(context.Background(), 4)
	require.NoError(t, err)
	_, err = src.Get(context.Background(), 5)
	assert.ErrorIs(t, err, ErrTripNotFound)

	_, err = src.Create(context.Background(), model.TripRequest{})
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.Zero(t, remote.calls)
}

func TestCachedSource_CreateCaches(t *testing.T) {
	c := newCache(t)
	src := NewCachedSource(&fakeRemote{}, c, false)

	trip, err := src.Create(context.Background(), model.TripRequest{CurrentLocation: "Reno, NV"})
	require.NoError(t, err)
	assert.True(t, c.Get(trip.ID).Found)
}
