package incident

import (
	"slices"
	"time"

	"github.com/evidenx/evidenx/internal/models"
)

type Mode string

const (
	ModeTimeline Mode = "timeline"
	ModeMonth    Mode = "month"
)

// View is the state of the incident page.
//
// Selected narrows the timeline to a single day. Without it the timeline shows every incident of Month.
type View struct {
	Mode     Mode
	Selected *models.DayOfMonth
	Year     int
	Month    time.Month
	Range    Range
}

// Filter returns the events shown by the view.
func Filter(events []models.IncidentEvent, view View) []models.IncidentEvent {
	r := view.Range
	if r == (Range{}) {
		r = FullDay
	}
	filtered := make([]models.IncidentEvent, 0, len(events))
	for _, e := range events {
		if !r.Contains(e.Time) {
			continue
		}
		if view.Mode != ModeMonth {
			if view.Selected != nil {
				if e.Date != *view.Selected {
					continue
				}
			} else if e.Date.Month != int(view.Month) {
				continue
			}
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// Navigation tells which incident days lie before and after the selected one.
type Navigation struct {
	Prev    *models.DayOfMonth
	Next    *models.DayOfMonth
	HasPrev bool
	HasNext bool
}

// Navigate finds the neighbouring incident dates of selected. The buttons are disabled at the ends and when the
// selected date is not an incident date.
func Navigate(dates []models.DayOfMonth, selected models.DayOfMonth) Navigation {
	i := slices.Index(dates, selected)
	if i < 0 {
		return Navigation{}
	}
	var nav Navigation
	if i > 0 {
		prev := dates[i-1]
		nav.Prev, nav.HasPrev = &prev, true
	}
	if i < len(dates)-1 {
		next := dates[i+1]
		nav.Next, nav.HasNext = &next, true
	}
	return nav
}
