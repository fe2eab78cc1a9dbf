package source

import (
	"context"
	"errors"

	"github.com/penwyp/go-eld-planner/internal/core/model"
)

// ErrTripNotFound is returned when a trip id is unknown to a source
var ErrTripNotFound = errors.New("trip not found")

// ErrReadOnly is returned by sources that cannot create trips
var ErrReadOnly = errors.New("source is read-only")

// Source provides trip records
type Source interface {
	List(ctx context.Context) ([]*model.Trip, error)
	Get(ctx context.Context, id int) (*model.Trip, error)
	Create(ctx context.Context, req model.TripRequest) (*model.Trip, error)
}

func findTrip(trips []*model.Trip, id int) (*model.Trip, error) {
	for _, trip := range trips {
		if trip.ID == id {
			return trip, nil
		}
	}
	return nil, ErrTripNotFound
}
