// Package calendar defines the external calendar collaborator consumed by
// reconciliation, plus an HTTP client implementation.
package calendar

import (
	"context"
	"time"
)

// EventInput carries the fields needed to create a remote event.
type EventInput struct {
	Name  string
	Start time.Time
	End   time.Time
}

// CreatedEvent is the remote confirmation for a created event.
type CreatedEvent struct {
	ExternalID     string
	ConfirmedStart time.Time
	ConfirmedEnd   time.Time
}

// RemoteEvent is an event as reported by a remote source.
type RemoteEvent struct {
	ExternalID string
	Name       string
	Start      time.Time
	End        time.Time
}

// Lister lists remote events inside a time range. Read-only sources such as
// ICS feeds implement only this half of the service.
type Lister interface {
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]RemoteEvent, error)
}

// Service is the full external calendar collaborator.
type Service interface {
	Lister
	CreateEvent(ctx context.Context, input EventInput) (CreatedEvent, error)
}
