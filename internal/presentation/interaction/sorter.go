package interaction

import (
	"fmt"
	"sort"
	"strings"

	"github.com/penwyp/go-eld-planner/internal/core/model"
)

// SortField represents the field to sort trips by
type SortField int

const (
	SortByID SortField = iota
	SortByDistance
	SortByDuration
	SortByCycle
	SortByDate
)

var sortFieldNames = map[string]SortField{
	"id":       SortByID,
	"distance": SortByDistance,
	"duration": SortByDuration,
	"cycle":    SortByCycle,
	"date":     SortByDate,
}

// ParseSortField maps a flag value onto a SortField
func ParseSortField(name string) (SortField, error) {
	field, ok := sortFieldNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return SortByID, fmt.Errorf("unknown sort field %q (want id, distance, duration, cycle or date)", name)
	}
	return field, nil
}

// SortOrder represents the sort order
type SortOrder int

const (
	SortAscending SortOrder = iota
	SortDescending
)

// TripSorter handles sorting of trip listings
type TripSorter struct {
	field SortField
	order SortOrder
}

// NewTripSorter creates a sorter; ties always fall back to ascending id
func NewTripSorter(field SortField, order SortOrder) *TripSorter {
	return &TripSorter{field: field, order: order}
}

// Sort sorts a copy of trips and returns it
func (s *TripSorter) Sort(trips []*model.Trip) []*model.Trip {
	sorted := make([]*model.Trip, len(trips))
	copy(sorted, trips)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		cmp := s.compare(a, b)
		if cmp == 0 {
			return a.ID < b.ID
		}
		if s.order == SortDescending {
			return cmp > 0
		}
		return cmp < 0
	})
	return sorted
}

func (s *TripSorter) compare(a, b *model.Trip) int {
	switch s.field {
	case SortByDistance:
		return compareFloat(a.TotalDistance, b.TotalDistance)
	case SortByDuration:
		return compareFloat(a.EstimatedDuration, b.EstimatedDuration)
	case SortByCycle:
		return compareFloat(a.CurrentCycleUsed, b.CurrentCycleUsed)
	case SortByDate:
		return strings.Compare(firstDate(a), firstDate(b))
	default:
		return a.ID - b.ID
	}
}

// firstDate is the earliest log date, or the creation time for trips
// without logs
func firstDate(t *model.Trip) string {
	if logs := t.SortedLogs(); len(logs) > 0 {
		return logs[0].Date
	}
	return t.CreatedAt
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
