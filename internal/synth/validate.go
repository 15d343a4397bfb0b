package synth

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/weekly-planner/internal/grid"
)

// Violation pinpoints one constraint breach in a candidate schedule.
type Violation struct {
	Index  int
	Name   string
	Reason string
}

// InvalidCandidateError rejects an externally supplied candidate schedule in
// its entirety. An empty candidate schedule is valid and never produces this
// error; callers can therefore distinguish "nothing to schedule" from
// "schedule refused".
type InvalidCandidateError struct {
	Violations []Violation
}

// Error implements the error interface.
func (e *InvalidCandidateError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "synth: invalid candidate schedule"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("event %d (%q): %s", v.Index, v.Name, v.Reason))
	}
	return "synth: invalid candidate schedule: " + strings.Join(parts, "; ")
}

// ValidateCandidate checks an externally generated candidate schedule against
// the same predicate used for local synthesis: events must carry valid names
// and durations, fall inside the week on a working, non-excluded day, and
// keep the minimum gap from existing events and from each other.
//
// The check fails closed: any violation rejects the whole batch via
// *InvalidCandidateError. Partial acceptance is never performed.
func ValidateCandidate(candidate []Event, existing []Event, week grid.Window, constraints Constraints) error {
	if err := constraints.Validate(); err != nil {
		return err
	}
	for _, event := range existing {
		if !event.End.After(event.Start) {
			return fmt.Errorf("synth: existing event %q: %w", event.Name, ErrInvalidInterval)
		}
	}
	if len(candidate) == 0 {
		return nil
	}

	excluded := constraints.excludedSet()
	gap := time.Duration(constraints.MinGapMinutes) * time.Minute
	invalid := &InvalidCandidateError{}

	for i, event := range candidate {
		if reason := checkEvent(event, week, constraints, excluded); reason != "" {
			invalid.Violations = append(invalid.Violations, Violation{Index: i, Name: event.Name, Reason: reason})
			continue
		}
		if !fits(event.Start, event.End, gap, existing) {
			invalid.Violations = append(invalid.Violations, Violation{Index: i, Name: event.Name, Reason: "overlaps an existing event within the minimum gap"})
			continue
		}
		for j, other := range candidate {
			if j == i {
				continue
			}
			if !other.End.After(other.Start) {
				continue // reported at its own index
			}
			if !fits(event.Start, event.End, gap, []Event{other}) {
				invalid.Violations = append(invalid.Violations, Violation{Index: i, Name: event.Name, Reason: fmt.Sprintf("conflicts with candidate event %d", j)})
				break
			}
		}
	}

	if len(invalid.Violations) > 0 {
		return invalid
	}
	return nil
}

// checkEvent validates a single candidate event in isolation and returns an
// empty string when it is acceptable.
func checkEvent(event Event, week grid.Window, constraints Constraints, excluded map[time.Weekday]struct{}) string {
	if event.Name == "" {
		return "name is empty"
	}
	if !event.End.After(event.Start) {
		return "end does not come after start"
	}

	minutes := int(event.End.Sub(event.Start) / time.Minute)
	if event.End.Sub(event.Start)%time.Minute != 0 || minutes%grid.SlotMinutes != 0 {
		return "duration is not a multiple of 5 minutes"
	}

	if !week.Contains(event.Start) {
		return "starts outside the target week"
	}

	start := event.Start.In(week.Start.Location())
	if _, ok := excluded[start.Weekday()]; ok {
		return "falls on an excluded weekday"
	}

	startOffset := start.Hour()*60 + start.Minute()
	if startOffset < constraints.WorkStart.Minutes() || startOffset+minutes > constraints.WorkEnd.Minutes() {
		return "falls outside working hours"
	}

	return ""
}
