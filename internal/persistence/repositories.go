package persistence

import (
	"context"
	"time"
)

// EventFilter narrows event queries to a time range.
type EventFilter struct {
	StartsAfter *time.Time
	EndsBefore  *time.Time
}

// TaskRepository exposes operations for stored tasks.
type TaskRepository interface {
	CreateTask(ctx context.Context, task Task) error
	ListTasks(ctx context.Context) ([]Task, error)
}

// EventRepository stores calendar events keyed by their reconciliation
// identity (Event.Key). UpsertEvent creates the record when absent and
// updates its fields when present.
type EventRepository interface {
	UpsertEvent(ctx context.Context, event Event) (Event, error)
	GetEventByKey(ctx context.Context, key string) (Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
}
