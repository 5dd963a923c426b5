// Package incident lays out the incident reconstruction: swim lanes per actor on an hour axis and a month calendar
// of incident days.
package incident

import (
	"fmt"
	"math"
	"slices"

	"github.com/evidenx/evidenx/internal/models"
)

// Range is an interval of fractional hours of a day.
type Range struct {
	Start float64
	End   float64
}

// FullDay is the range applied when the view does not narrow it.
var FullDay = Range{Start: 0, End: 24} //nolint:gochecknoglobals // constant

// emptyRange is shown when there are no events to lay out.
var emptyRange = Range{Start: 8, End: 12} //nolint:gochecknoglobals // constant

const (
	// minBlockWidth keeps short events clickable, in percent of the axis.
	minBlockWidth = 8.0
	// blockInset shifts the blocks right of the lane border, in percent of the axis.
	blockInset = 1.0
	// axisPadding is added around the events in hours before rounding to whole hours.
	axisPadding = 0.5
)

// Span returns the length of the range in hours.
func (r Range) Span() float64 {
	return r.End - r.Start
}

func (r Range) Contains(t float64) bool {
	return t >= r.Start && t <= r.End
}

// DataRange returns the hour axis fitted to the events.
//
// The axis starts at the whole hour at or below half an hour before the first event and ends at the whole hour at
// or above half an hour after the last event ends.
func DataRange(events []models.IncidentEvent) Range {
	if len(events) == 0 {
		return emptyRange
	}
	minTime := math.Inf(1)
	maxEnd := math.Inf(-1)
	for _, e := range events {
		minTime = math.Min(minTime, e.Time)
		maxEnd = math.Max(maxEnd, e.End())
	}
	return Range{
		Start: math.Floor(minTime - axisPadding),
		End:   math.Ceil(maxEnd + axisPadding),
	}
}

// Offset maps a time to its position along the axis in percent. A zero-width range maps everything to 0.
func Offset(t float64, r Range) float64 {
	if r.Span() == 0 {
		return 0
	}
	return (t - r.Start) / r.Span() * 100
}

// Block is the placement of an event on its lane in percent of the axis.
type Block struct {
	Left  float64
	Width float64
}

// Place returns the placement of an event on the axis.
func Place(e models.IncidentEvent, r Range) Block {
	width := minBlockWidth
	if r.Span() != 0 {
		width = math.Max(e.Duration/r.Span()*100, minBlockWidth)
	}
	return Block{
		Left:  Offset(e.Time, r) + blockInset,
		Width: width,
	}
}

// Tick is an hour label on the axis.
type Tick struct {
	Hour   float64
	Offset float64
	Label  string
}

// HourTicks returns the whole-hour labels of the axis starting from r.Start.
func HourTicks(r Range) []Tick {
	n := int(math.Ceil(r.Span())) + 1
	if n < 1 {
		return nil
	}
	ticks := make([]Tick, 0, n)
	for i := range n {
		hour := r.Start + float64(i)
		ticks = append(ticks, Tick{Hour: hour, Offset: Offset(hour, r), Label: FormatHours(hour)})
	}
	return ticks
}

// FormatHours formats fractional hours as HH:MM, truncating partial minutes.
func FormatHours(t float64) string {
	hours := math.Floor(t)
	minutes := math.Floor((t - hours) * 60) //nolint:mnd // minutes per hour
	return fmt.Sprintf("%02d:%02d", int(hours), int(minutes))
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ConfidenceLevel buckets a confidence percentage for colouring.
func ConfidenceLevel(confidence int) Confidence {
	switch {
	case confidence >= 90: //nolint:mnd // threshold
		return ConfidenceHigh
	case confidence >= 70: //nolint:mnd // threshold
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Lane is the row of an actor in the swim-lane view.
type Lane struct {
	Actor       models.Actor
	Highlighted bool
	Events      []models.IncidentEvent
}

// Lanes groups the events by actor. Lanes follow the actor order and every actor gets a lane even without events.
// Events of unknown actors are dropped.
func Lanes(actors []models.Actor, events []models.IncidentEvent) []Lane {
	lanes := make([]Lane, 0, len(actors))
	for _, actor := range actors {
		lane := Lane{
			Actor:       actor,
			Highlighted: actor.Type == models.ActorTypeVictim,
			Events:      []models.IncidentEvent{},
		}
		for _, e := range events {
			if e.Actor == actor.ID {
				lane.Events = append(lane.Events, e)
			}
		}
		lanes = append(lanes, lane)
	}
	return lanes
}

// Dates returns the distinct incident days of the events in calendar order.
func Dates(events []models.IncidentEvent) []models.DayOfMonth {
	var dates []models.DayOfMonth
	for _, e := range events {
		if !slices.Contains(dates, e.Date) {
			dates = append(dates, e.Date)
		}
	}
	slices.SortFunc(dates, func(a, b models.DayOfMonth) int {
		if a.Month != b.Month {
			return a.Month - b.Month
		}
		return a.Day - b.Day
	})
	return dates
}
