// Package testfixtures provides deterministic clocks, identifiers, and record
// builders shared by persistence and application tests.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/weekly-planner/internal/grid"
	"github.com/example/weekly-planner/internal/persistence"
	"github.com/example/weekly-planner/internal/synth"
)

var (
	taskCounter  uint64
	eventCounter uint64
)

var referenceTime = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures,
// a Monday morning in UTC.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceWeek returns the Monday-anchored week window containing
// ReferenceTime.
func ReferenceWeek() grid.Window {
	return grid.WindowContaining(referenceTime, time.Monday)
}

// DefaultConstraints returns the placement constraints shared by fixtures:
// a 09:00 to 17:00 working window with a 30 minute gap.
func DefaultConstraints() synth.Constraints {
	return synth.Constraints{
		WorkStart:     synth.TimeOfDay{Hour: 9},
		WorkEnd:       synth.TimeOfDay{Hour: 17},
		MinGapMinutes: 30,
	}
}

// TaskOption configures a generated task fixture.
type TaskOption func(*persistence.Task)

// NewTaskFixture returns a deterministic task record with optional overrides.
func NewTaskFixture(opts ...TaskOption) persistence.Task {
	idx := atomic.AddUint64(&taskCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	task := persistence.Task{
		ID:              fmt.Sprintf("task-%03d", idx),
		Name:            fmt.Sprintf("Task %03d", idx),
		DurationMinutes: 60,
		WeeklyFrequency: 1,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(&task)
	}
	return task
}

// WithTaskID overrides the generated task ID.
func WithTaskID(id string) TaskOption {
	return func(t *persistence.Task) {
		t.ID = id
	}
}

// WithTaskName overrides the generated task name.
func WithTaskName(name string) TaskOption {
	return func(t *persistence.Task) {
		t.Name = name
	}
}

// WithTaskDuration sets the occurrence duration in minutes.
func WithTaskDuration(minutes int) TaskOption {
	return func(t *persistence.Task) {
		t.DurationMinutes = minutes
	}
}

// WithTaskFrequency sets the weekly occurrence count.
func WithTaskFrequency(frequency int) TaskOption {
	return func(t *persistence.Task) {
		t.WeeklyFrequency = frequency
	}
}

// EventOption configures a generated event fixture.
type EventOption func(*persistence.Event)

// NewEventFixture returns a deterministic event record inside ReferenceWeek.
// Events are pending by default; use WithEventExternalID for a confirmed one.
func NewEventFixture(opts ...EventOption) persistence.Event {
	idx := atomic.AddUint64(&eventCounter, 1)
	start := ReferenceWeek().Day(int((idx - 1) % 7)).Add(10 * time.Hour)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	event := persistence.Event{
		ID:        fmt.Sprintf("event-%03d", idx),
		Name:      fmt.Sprintf("Event %03d", idx),
		Start:     start,
		End:       start.Add(time.Hour),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(e *persistence.Event) {
		e.ID = id
	}
}

// WithEventName overrides the generated event name.
func WithEventName(name string) EventOption {
	return func(e *persistence.Event) {
		e.Name = name
	}
}

// WithEventExternalID marks the event as confirmed by the external calendar.
func WithEventExternalID(externalID string) EventOption {
	return func(e *persistence.Event) {
		e.ExternalID = &externalID
	}
}

// WithEventInterval sets the event's start and end.
func WithEventInterval(start, end time.Time) EventOption {
	return func(e *persistence.Event) {
		e.Start = start
		e.End = end
	}
}

// WithEventGenerated marks the event as synthesized rather than imported.
func WithEventGenerated(generated bool) EventOption {
	return func(e *persistence.Event) {
		e.Generated = generated
	}
}
