package source

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/penwyp/go-eld-planner/internal/data/parser"
	"github.com/penwyp/go-eld-planner/internal/data/scanner"
	"github.com/penwyp/go-eld-planner/internal/util"
)

// FileSource reads trips from local JSON files matched by glob patterns.
// Files that fail to parse are skipped and logged.
type FileSource struct {
	scanner *scanner.FileScanner
	parser  *parser.Parser
}

// NewFileSource creates a source over the given patterns
func NewFileSource(patterns ...string) *FileSource {
	return &FileSource{
		scanner: scanner.NewFileScanner(patterns...),
		parser:  parser.NewParser(runtime.NumCPU()),
	}
}

// Dirs lists the directories to watch for changes
func (s *FileSource) Dirs() []string {
	return s.scanner.Dirs()
}

// List loads every trip. When two files carry the same id the one from the
// later path wins.
func (s *FileSource) List(ctx context.Context) ([]*model.Trip, error) {
	start := time.Now()
	files, err := s.scanner.Scan()
	if err != nil {
		return nil, err
	}

	type found struct {
		file string
		trip *model.Trip
	}
	var all []found
	for result := range s.parser.ParseFiles(files) {
		if result.Error != nil {
			util.LogWarnf("Skipping trip file %s: %v", result.File, result.Error)
			continue
		}
		for _, trip := range result.Trips {
			all = append(all, found{file: result.File, trip: trip})
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].file < all[j].file })
	byID := make(map[int]*model.Trip, len(all))
	for _, f := range all {
		byID[f.trip.ID] = f.trip
	}

	trips := make([]*model.Trip, 0, len(byID))
	for _, trip := range byID {
		trips = append(trips, trip)
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].ID < trips[j].ID })

	util.LogDebugf("Loaded %d trips from %d files in %v", len(trips), len(files), time.Since(start))
	return trips, nil
}

func (s *FileSource) Get(ctx context.Context, id int) (*model.Trip, error) {
	trips, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return findTrip(trips, id)
}

// Create is not supported; trip planning happens on the API
func (s *FileSource) Create(context.Context, model.TripRequest) (*model.Trip, error) {
	return nil, fmt.Errorf("create trip from files: %w", ErrReadOnly)
}
