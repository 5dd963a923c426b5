package incident

import (
	"time"

	"github.com/evidenx/evidenx/internal/models"
)

// Cell is a day of the month calendar. Leading cells before the first weekday of the month have Day 0.
type Cell struct {
	Day    int
	Events int
}

// Incident reports whether any event happened on the day.
func (c Cell) Incident() bool {
	return c.Events > 0
}

// Month is the calendar grid of a month starting on Sunday.
type Month struct {
	Year  int
	Month time.Month
	Cells []Cell
}

// MonthGrid returns the calendar of the month with per-day event counts.
func MonthGrid(year int, month time.Month, events []models.IncidentEvent) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	leading := int(first.Weekday())

	cells := make([]Cell, leading, leading+daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		cell := Cell{Day: day}
		for _, e := range events {
			if e.Date.Month == int(month) && e.Date.Day == day {
				cell.Events++
			}
		}
		cells = append(cells, cell)
	}
	return Month{Year: year, Month: month, Cells: cells}
}

// Prev returns the year and month before, wrapping over the new year.
func (m Month) Prev() (int, time.Month) {
	if m.Month == time.January {
		return m.Year - 1, time.December
	}
	return m.Year, m.Month - 1
}

// Next returns the year and month after, wrapping over the new year.
func (m Month) Next() (int, time.Month) {
	if m.Month == time.December {
		return m.Year + 1, time.January
	}
	return m.Year, m.Month + 1
}
