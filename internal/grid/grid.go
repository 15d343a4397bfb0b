package grid

import (
	"errors"
	"math"
	"time"
)

const (
	// SlotMinutes is the grid resolution in minutes.
	SlotMinutes = 5
	// SlotsPerDay is the number of slots covering a 24-hour day.
	SlotsPerDay = 24 * 60 / SlotMinutes
	// HeaderRows is the fixed row offset reserved for the day header.
	HeaderRows = 2
)

// ErrInvalidInterval indicates an event whose end does not come after its start.
var ErrInvalidInterval = errors.New("grid: event end must be after start")

// Event is the minimal view of a calendar event needed for projection.
type Event struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Window identifies the 7-day span being displayed. Start must be a
// week-aligned instant (midnight on the configured first day of the week).
type Window struct {
	Start time.Time
}

// WindowContaining returns the window of the week holding t, anchored at the
// most recent occurrence of firstDay at midnight in t's location.
func WindowContaining(t time.Time, firstDay time.Weekday) Window {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(t.Weekday()) - int(firstDay) + 7) % 7
	return Window{Start: midnight.AddDate(0, 0, -offset)}
}

// Day returns midnight of the i-th day of the window (0-6).
func (w Window) Day(i int) time.Time {
	return w.Start.AddDate(0, 0, i)
}

// End returns the exclusive end instant of the window.
func (w Window) End() time.Time {
	return w.Start.AddDate(0, 0, 7)
}

// Contains reports whether t falls inside the half-open window [Start, Start+7d).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End())
}

// Next returns the window one week later.
func (w Window) Next() Window {
	return Window{Start: w.End()}
}

// Previous returns the window one week earlier.
func (w Window) Previous() Window {
	return Window{Start: w.Start.AddDate(0, 0, -7)}
}

// Coordinate places an event on the display grid. Column is the day-of-week
// index relative to the window start, RowStart and RowSpan are in 5-minute
// units with RowStart already including the header offset.
type Coordinate struct {
	Column   int
	RowStart int
	RowSpan  int
}

// Project maps an event onto the grid of the given week.
//
// The boolean result is false when the event starts outside the window; that
// is an expected outcome, not an error. Events with a non-positive duration
// are rejected with ErrInvalidInterval.
func Project(event Event, week Window) (Coordinate, bool, error) {
	if !event.End.After(event.Start) {
		return Coordinate{}, false, ErrInvalidInterval
	}
	if !week.Contains(event.Start) {
		return Coordinate{}, false, nil
	}

	start := event.Start.In(week.Start.Location())
	column := daysBetween(week.Start, start)
	rowStart := start.Hour()*(60/SlotMinutes) + start.Minute()/SlotMinutes + HeaderRows

	minutes := event.End.Sub(event.Start).Minutes()
	rowSpan := int(math.Round(minutes / SlotMinutes))
	if rowSpan < 1 {
		rowSpan = 1
	}
	// Multi-day events are out of scope; the span stops at the end of the day.
	if remaining := SlotsPerDay - (rowStart - HeaderRows); rowSpan > remaining {
		rowSpan = remaining
	}

	return Coordinate{Column: column, RowStart: rowStart, RowSpan: rowSpan}, true, nil
}

func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}
