package application

import (
	"time"

	"github.com/example/weekly-planner/internal/grid"
	"github.com/example/weekly-planner/internal/persistence"
	"github.com/example/weekly-planner/internal/reconcile"
	"github.com/example/weekly-planner/internal/synth"
)

// TaskInput captures caller provided task fields.
type TaskInput struct {
	Name            string
	DurationMinutes int
	WeeklyFrequency int
}

// PlanResult reports the outcome of planning a week.
type PlanResult struct {
	Scheduled []synth.Event
	Unplaced  []synth.Unplaced
	Sync      reconcile.Result
}

// EventCell pairs a stored event with its grid placement for rendering.
type EventCell struct {
	Event      persistence.Event
	Coordinate grid.Coordinate
	Palette    int
}

// WeekView is the render-ready projection of one week.
type WeekView struct {
	Week  grid.Window
	Cells []EventCell
}

func toSynthEvents(events []persistence.Event) []synth.Event {
	out := make([]synth.Event, 0, len(events))
	for _, event := range events {
		out = append(out, synth.Event{Name: event.Name, Start: event.Start, End: event.End})
	}
	return out
}

func cloneEvents(events []persistence.Event) []persistence.Event {
	if len(events) == 0 {
		return nil
	}
	out := make([]persistence.Event, len(events))
	copy(out, events)
	return out
}

func windowFilter(week grid.Window) persistence.EventFilter {
	start := week.Start
	end := week.End()
	return persistence.EventFilter{StartsAfter: &start, EndsBefore: &end}
}

func weekCacheKey(week grid.Window) string {
	return week.Start.UTC().Format(time.RFC3339)
}
