package formatter

import (
	"fmt"
	"io"

	"github.com/penwyp/go-eld-planner/internal/analyzer"
	"github.com/penwyp/go-eld-planner/internal/core/model"
)

// Report carries the views to render. Formatters skip sections that are nil.
type Report struct {
	Trips     []*model.Trip          `json:"trips,omitempty"`
	Logs      []analyzer.LogRow      `json:"logs,omitempty"`
	Timelines []model.DailyTimeline  `json:"timelines,omitempty"`
	Analysis  *analyzer.TripAnalysis `json:"analysis,omitempty"`
}

type Formatter interface {
	Format(w io.Writer, report Report) error
}

// Names of the supported output formats
const (
	FormatTable   = "table"
	FormatJSON    = "json"
	FormatCSV     = "csv"
	FormatSummary = "summary"
)

// New returns the formatter registered under name. Options only affect the
// table formatter.
func New(name string, opts ...Option) (Formatter, error) {
	switch name {
	case "", FormatTable:
		return NewTableFormatter(opts...), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatCSV:
		return NewCSVFormatter(), nil
	case FormatSummary:
		return NewSummaryFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want table, json, csv or summary)", name)
	}
}

// Status text shown for a day or trip
const (
	StatusCompliant = "COMPLIANT"
	StatusViolation = "VIOLATION"
)

func statusText(compliant bool) string {
	if compliant {
		return StatusCompliant
	}
	return StatusViolation
}

// tripCompliant reports whether every daily log is within both limits
func tripCompliant(trip *model.Trip) bool {
	for _, log := range trip.DailyLogs {
		if !log.IsCompliant() {
			return false
		}
	}
	return true
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
