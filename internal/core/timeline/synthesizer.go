package timeline

import (
	"fmt"
	"math"
	"time"

	"github.com/penwyp/go-eld-planner/internal/core/constants"
	"github.com/penwyp/go-eld-planner/internal/core/model"
)

// TimeLayout is the 12-hour clock label used on log sheets, e.g. "06:00 AM"
const TimeLayout = "03:04 PM"

var (
	restStopPool = []string{"Rest Area A", "Truck Stop B", "Service Plaza C", "Parking Area D"}
	highwayPool  = []string{"Highway I-90", "Route 66", "Interstate 80", "State Road 101"}
)

// TripContext carries the trip-level inputs the synthesizer needs
type TripContext struct {
	Origin   string
	Pickup   string
	Dropoff  string
	DayCount int
}

// ContextFor builds a TripContext from a trip
func ContextFor(trip *model.Trip) TripContext {
	return TripContext{
		Origin:   trip.Origin(),
		Pickup:   trip.Pickup(),
		Dropoff:  trip.DropoffLocation,
		DayCount: len(trip.DailyLogs),
	}
}

// segment is one planned chunk of the driving day
type segment struct {
	isBreak bool
	minutes float64
}

func (s segment) duration() time.Duration {
	return time.Duration(s.minutes * float64(time.Minute))
}

// planSegments splits the day's driving into chunks of at most 240 minutes,
// with a single break after the first chunk when driving exceeds 8 hours.
func planSegments(drivingHours float64) []segment {
	if drivingHours <= 0 {
		return nil
	}

	remaining := drivingHours * 60
	needsBreak := drivingHours > constants.BreakThresholdHrs

	var segments []segment
	for drives := 0; remaining > 0 && drives < constants.MaxDrivingSegments; drives++ {
		if needsBreak && len(segments) == 1 {
			segments = append(segments, segment{isBreak: true, minutes: constants.BreakDuration.Minutes()})
		}
		chunk := math.Min(constants.MaxSegmentMinutes, remaining)
		segments = append(segments, segment{minutes: chunk})
		remaining -= chunk
	}

	return segments
}

// clock is the running wall clock of a synthesized day
type clock struct {
	now time.Time
}

func (c *clock) set(hour int) {
	c.now = time.Date(c.now.Year(), c.now.Month(), c.now.Day(), hour, 0, 0, 0, c.now.Location())
}

func (c *clock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func (c *clock) event(status model.DutyStatus, location, remark string) model.DutyEvent {
	return model.DutyEvent{
		Time:     c.now.Format(TimeLayout),
		At:       c.now,
		Location: location,
		Status:   status,
		Remark:   remark,
	}
}

// Synthesize builds the plausible duty-status timeline for one day from its
// aggregate hours. The seed is the calendar date the clock runs on; only its
// year, month, day and location are used.
func Synthesize(day model.DailyLogSummary, dayIndex int, trip TripContext, seed time.Time) model.DailyTimeline {
	c := &clock{now: seed}
	c.set(constants.DayStartHour)

	isFirst := dayIndex == 0
	isLast := dayIndex == trip.DayCount-1

	preTripLocation := restStopPool[mod(dayIndex, len(restStopPool))]
	if isFirst {
		preTripLocation = trip.Origin
	}

	events := make([]model.DutyEvent, 0, 8)
	events = append(events, c.event(model.StatusOnDuty, preTripLocation, "Pre-trip inspection and vehicle check"))

	c.advance(constants.PreTripDuration)
	events = append(events, c.event(model.StatusDriving, "Departure", "Begin driving - Main route"))

	// Each chunk is stamped when it ends; remarks number by list position.
	for i, seg := range planSegments(day.DrivingHours) {
		c.advance(seg.duration())
		if seg.isBreak {
			events = append(events, c.event(model.StatusOffDuty, "Rest Area", "30-minute break - FMCSA requirement"))
			continue
		}
		location := highwayPool[mod(dayIndex+i, len(highwayPool))]
		events = append(events, c.event(model.StatusDriving, location, fmt.Sprintf("Driving segment %d", i+1)))
	}

	if isFirst {
		c.advance(constants.StopDuration)
		pickup := trip.Pickup
		if pickup == "" {
			pickup = trip.Origin
		}
		events = append(events, c.event(model.StatusOnDuty, pickup, "Loading and pickup activities"))
	}

	if isLast {
		c.advance(constants.StopDuration)
		events = append(events, c.event(model.StatusOnDuty, trip.Dropoff, "Unloading and dropoff activities"))
	}

	c.set(constants.PostTripHour)
	postTripLocation := "Destination"
	if isLast {
		postTripLocation = trip.Dropoff
	}
	events = append(events, c.event(model.StatusOnDuty, postTripLocation, "Post-trip inspection and documentation"))

	c.set(constants.RestStartHour)
	events = append(events, c.event(model.StatusOffDuty, "Hotel/Rest Area", "10-hour rest period"))

	return model.DailyTimeline{
		Date:     day.Date,
		DayIndex: dayIndex,
		DayCount: trip.DayCount,
		Events:   events,
		Summary:  day.Summarize(),
	}
}

// SynthesizeTrip synthesizes every day of the trip in date order. A trip with
// no daily logs yields an empty slice.
func SynthesizeTrip(trip *model.Trip, seed time.Time) []model.DailyTimeline {
	if trip == nil || len(trip.DailyLogs) == 0 {
		return []model.DailyTimeline{}
	}

	ctx := ContextFor(trip)
	logs := trip.SortedLogs()
	timelines := make([]model.DailyTimeline, 0, len(logs))
	for i, day := range logs {
		timelines = append(timelines, Synthesize(day, i, ctx, seed))
	}
	return timelines
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
