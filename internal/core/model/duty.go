package model

import (
	"fmt"
	"strings"
	"time"
)

// DutyStatus is the single duty state of an event
type DutyStatus int

const (
	StatusOffDuty DutyStatus = iota
	StatusDriving
	StatusOnDuty
)

var dutyStatusNames = map[DutyStatus]string{
	StatusOffDuty: "OFF_DUTY",
	StatusDriving: "DRIVING",
	StatusOnDuty:  "ON_DUTY",
}

func (s DutyStatus) String() string {
	if name, ok := dutyStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("DutyStatus(%d)", int(s))
}

// Label is the human column heading for the status
func (s DutyStatus) Label() string {
	switch s {
	case StatusDriving:
		return "Driving"
	case StatusOnDuty:
		return "On Duty"
	default:
		return "Off Duty"
	}
}

// ParseDutyStatus accepts the wire names, case-insensitively
func ParseDutyStatus(s string) (DutyStatus, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for status, name := range dutyStatusNames {
		if name == upper {
			return status, nil
		}
	}
	return StatusOffDuty, fmt.Errorf("unknown duty status %q", s)
}

func (s DutyStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *DutyStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseDutyStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DutyEvent is one synthesized row of a daily log
type DutyEvent struct {
	Time     string     `json:"time"`
	At       time.Time  `json:"at"`
	Location string     `json:"location"`
	Status   DutyStatus `json:"status"`
	Remark   string     `json:"remark"`
}

// DaySummary echoes the upstream numbers plus display flags
type DaySummary struct {
	DailyLogSummary
	Compliant       bool    `json:"compliant"`
	BreakApplied    bool    `json:"break_applied"`
	DrivingExceeded float64 `json:"driving_exceeded"`
	CycleExceeded   float64 `json:"cycle_exceeded"`
}

// DailyTimeline is the synthesized log for one day of a trip
type DailyTimeline struct {
	Date     string      `json:"date"`
	DayIndex int         `json:"day_index"`
	DayCount int         `json:"day_count"`
	Events   []DutyEvent `json:"events"`
	Summary  DaySummary  `json:"summary"`
}

// DayLabel renders "Day i of n"
func (d DailyTimeline) DayLabel() string {
	return fmt.Sprintf("Day %d of %d", d.DayIndex+1, d.DayCount)
}

// IsFirst reports whether this is the trip's first day
func (d DailyTimeline) IsFirst() bool {
	return d.DayIndex == 0
}

// IsLast reports whether this is the trip's last day
func (d DailyTimeline) IsLast() bool {
	return d.DayIndex == d.DayCount-1
}
