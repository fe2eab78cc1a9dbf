package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/penwyp/go-eld-planner/internal/data/cache"
	"github.com/penwyp/go-eld-planner/internal/util"
)

// CachedSource fronts a remote source with the trip cache. Fresh results
// are written through; when the remote fails the last snapshot is served.
// In offline mode the remote is never contacted.
type CachedSource struct {
	remote  Source
	cache   cache.Cache
	offline bool
}

// NewCachedSource wraps remote with c
func NewCachedSource(remote Source, c cache.Cache, offline bool) *CachedSource {
	return &CachedSource{remote: remote, cache: c, offline: offline}
}

func (s *CachedSource) List(ctx context.Context) ([]*model.Trip, error) {
	if s.offline {
		return s.cache.List()
	}

	trips, err := s.remote.List(ctx)
	if err != nil {
		cached, cacheErr := s.cache.List()
		if cacheErr != nil || len(cached) == 0 {
			return nil, err
		}
		util.LogWarnf("Trip API unavailable, serving %d cached trips: %v", len(cached), err)
		return cached, nil
	}

	if err := s.cache.SetAll(trips); err != nil {
		util.LogWarnf("Failed to cache trips: %v", err)
	}
	return trips, nil
}

func (s *CachedSource) Get(ctx context.Context, id int) (*model.Trip, error) {
	if s.offline {
		result := s.cache.Get(id)
		if !result.Found {
			util.LogDebugf("Offline cache miss for trip %d: %s", id, result.MissReason)
			return nil, ErrTripNotFound
		}
		return result.Trip, nil
	}

	trip, err := s.remote.Get(ctx, id)
	if errors.Is(err, ErrTripNotFound) {
		return nil, err
	}
	if err != nil {
		if result := s.cache.Get(id); result.Found {
			util.LogWarnf("Trip API unavailable, serving cached trip %d: %v", id, err)
			return result.Trip, nil
		}
		return nil, err
	}

	if err := s.cache.Set(trip); err != nil {
		util.LogWarnf("Failed to cache trip %d: %v", id, err)
	}
	return trip, nil
}

func (s *CachedSource) Create(ctx context.Context, req model.TripRequest) (*model.Trip, error) {
	if s.offline {
		return nil, fmt.Errorf("create trip while offline: %w", ErrReadOnly)
	}
	trip, err := s.remote.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(trip); err != nil {
		util.LogWarnf("Failed to cache trip %d: %v", trip.ID, err)
	}
	return trip, nil
}
