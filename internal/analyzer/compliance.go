package analyzer

import (
	"fmt"
	"strconv"

	"github.com/penwyp/go-eld-planner/internal/core/constants"
	"github.com/penwyp/go-eld-planner/internal/core/model"
)

// Violation lists the limits a single day went over
type Violation struct {
	Date   string   `json:"date"`
	Issues []string `json:"issues"`
}

// ComplianceStats summarises a set of daily logs against the display limits
type ComplianceStats struct {
	TotalDays        int         `json:"total_days"`
	CompliantDays    int         `json:"compliant_days"`
	ComplianceRate   float64     `json:"compliance_rate"`
	DaysWithBreaks   int         `json:"days_with_breaks"`
	CycleUtilization float64     `json:"cycle_utilization"`
	Violations       []Violation `json:"violations"`
}

// FullyCompliant reports whether every day is within both limits
func (s ComplianceStats) FullyCompliant() bool {
	return s.CompliantDays == s.TotalDays
}

// Compliance computes stats in the given order. Cycle utilization uses the
// last log's cycle total.
func Compliance(logs []model.DailyLogSummary) ComplianceStats {
	stats := ComplianceStats{
		TotalDays:  len(logs),
		Violations: []Violation{},
	}
	if len(logs) == 0 {
		return stats
	}

	for _, log := range logs {
		if log.IsCompliant() {
			stats.CompliantDays++
		}
		if log.NeedsBreak() {
			stats.DaysWithBreaks++
		}
		if issues := Issues(log); len(issues) > 0 {
			stats.Violations = append(stats.Violations, Violation{Date: log.Date, Issues: issues})
		}
	}

	stats.ComplianceRate = Rate(stats.CompliantDays, stats.TotalDays)
	stats.CycleUtilization = logs[len(logs)-1].TotalCycleHours / constants.MaxCycleHours * 100
	return stats
}

// Issues describes each exceeded limit, e.g. "Driving hours exceeded: 12h/11h"
func Issues(log model.DailyLogSummary) []string {
	var issues []string
	if log.DrivingHours > constants.MaxDrivingHours {
		issues = append(issues, fmt.Sprintf("Driving hours exceeded: %sh/%gh", trimFloat(log.DrivingHours), constants.MaxDrivingHours))
	}
	if log.TotalCycleHours > constants.MaxCycleHours {
		issues = append(issues, fmt.Sprintf("Cycle hours exceeded: %sh/%gh", trimFloat(log.TotalCycleHours), constants.MaxCycleHours))
	}
	return issues
}

// Rate is part/total as a percentage, zero when total is zero
func Rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// RateLevel buckets a compliance rate: good at 90+, warn at 70+, otherwise bad
func RateLevel(rate float64) string {
	switch {
	case rate >= 90:
		return "good"
	case rate >= 70:
		return "warn"
	default:
		return "bad"
	}
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
