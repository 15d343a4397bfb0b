package persistence

import (
	"fmt"
	"time"
)

// Task represents a recurring task definition stored locally.
type Task struct {
	ID              string
	Name            string
	DurationMinutes int
	WeeklyFrequency int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Event represents a calendar event stored locally. Events confirmed by the
// external calendar carry an ExternalID; locally synthesized events stay
// pending until reconciliation assigns one.
type Event struct {
	ID         string
	ExternalID *string
	Name       string
	Start      time.Time
	End        time.Time
	Generated  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Key returns the stable reconciliation identity of the event: the external
// id when confirmed, otherwise a content key derived from name and start.
func (e Event) Key() string {
	if e.ExternalID != nil && *e.ExternalID != "" {
		return "confirmed:" + *e.ExternalID
	}
	return fmt.Sprintf("pending:%s@%d", e.Name, e.Start.UTC().Unix())
}
