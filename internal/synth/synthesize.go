package synth

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/weekly-planner/internal/grid"
)

// ErrEmptyName indicates a task or event without a name.
var ErrEmptyName = errors.New("synth: name must not be empty")

// ErrInvalidDuration indicates a duration that is not a positive multiple of five minutes.
var ErrInvalidDuration = errors.New("synth: duration must be a positive multiple of 5 minutes")

// ErrInvalidFrequency indicates a non-positive weekly frequency.
var ErrInvalidFrequency = errors.New("synth: weekly frequency must be positive")

// ErrInvalidInterval indicates an event whose end does not come after its start.
var ErrInvalidInterval = errors.New("synth: event end must be after start")

// Task is a recurring obligation to be placed into the week.
type Task struct {
	Name            string
	DurationMinutes int
	WeeklyFrequency int
}

// Event is a concrete time range on the calendar. Existing events are treated
// as immovable; synthesized events are returned as new values.
type Event struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Unplaced records a task occurrence for which no valid slot exists.
type Unplaced struct {
	TaskName        string
	Occurrence      int
	DurationMinutes int
}

// Result carries the outcome of a synthesis run.
type Result struct {
	Scheduled []Event
	Unplaced  []Unplaced
}

// Synthesize places WeeklyFrequency occurrences of each task into free slots
// of the week, honoring working hours, excluded weekdays, and the minimum gap
// around every placed occurrence.
//
// Placement is deterministic: tasks are processed in input order, weekdays in
// calendar order, and slots scanned forward from the work start in 5-minute
// steps. Multiple occurrences of one task prefer distinct days before reusing
// a day. Occurrences that fit nowhere are reported in Result.Unplaced.
func Synthesize(tasks []Task, existing []Event, week grid.Window, constraints Constraints) (Result, error) {
	if err := constraints.Validate(); err != nil {
		return Result{}, err
	}
	for _, task := range tasks {
		if err := validateTask(task); err != nil {
			return Result{}, err
		}
	}
	for _, event := range existing {
		if !event.End.After(event.Start) {
			return Result{}, fmt.Errorf("synth: existing event %q: %w", event.Name, ErrInvalidInterval)
		}
	}

	excluded := constraints.excludedSet()
	blockers := append([]Event(nil), existing...)

	var result Result
	for _, task := range tasks {
		usedDays := make(map[int]struct{})
		duration := time.Duration(task.DurationMinutes) * time.Minute

		for occurrence := 0; occurrence < task.WeeklyFrequency; occurrence++ {
			slot, day, ok := findSlot(task.Name, duration, week, constraints, excluded, blockers, usedDays, true)
			if !ok {
				slot, day, ok = findSlot(task.Name, duration, week, constraints, excluded, blockers, usedDays, false)
			}
			if !ok {
				result.Unplaced = append(result.Unplaced, Unplaced{
					TaskName:        task.Name,
					Occurrence:      occurrence,
					DurationMinutes: task.DurationMinutes,
				})
				continue
			}

			usedDays[day] = struct{}{}
			blockers = append(blockers, slot)
			result.Scheduled = append(result.Scheduled, slot)
		}
	}

	return result, nil
}

// findSlot scans the week for the first slot that fits the task occurrence.
// When skipUsedDays is set, days already holding an occurrence of the same
// task are passed over so occurrences spread across the week.
func findSlot(name string, duration time.Duration, week grid.Window, constraints Constraints, excluded map[time.Weekday]struct{}, blockers []Event, usedDays map[int]struct{}, skipUsedDays bool) (Event, int, bool) {
	gap := time.Duration(constraints.MinGapMinutes) * time.Minute
	step := grid.SlotMinutes * time.Minute

	for day := 0; day < 7; day++ {
		midnight := week.Day(day)
		if _, ok := excluded[midnight.Weekday()]; ok {
			continue
		}
		if _, ok := usedDays[day]; skipUsedDays && ok {
			continue
		}

		first := midnight.Add(time.Duration(constraints.WorkStart.Minutes()) * time.Minute)
		latest := midnight.Add(time.Duration(constraints.WorkEnd.Minutes())*time.Minute - duration)

		for start := first; !start.After(latest); start = start.Add(step) {
			end := start.Add(duration)
			if fits(start, end, gap, blockers) {
				return Event{Name: name, Start: start, End: end}, day, true
			}
		}
	}

	return Event{}, 0, false
}

// fits reports whether the candidate interval, widened by the gap on both
// sides, avoids every blocker.
func fits(start, end time.Time, gap time.Duration, blockers []Event) bool {
	widenedStart := start.Add(-gap)
	widenedEnd := end.Add(gap)
	for _, blocker := range blockers {
		if widenedStart.Before(blocker.End) && blocker.Start.Before(widenedEnd) {
			return false
		}
	}
	return true
}

func validateTask(task Task) error {
	if task.Name == "" {
		return fmt.Errorf("synth: task: %w", ErrEmptyName)
	}
	if task.DurationMinutes <= 0 || task.DurationMinutes%grid.SlotMinutes != 0 {
		return fmt.Errorf("synth: task %q: %w", task.Name, ErrInvalidDuration)
	}
	if task.WeeklyFrequency <= 0 {
		return fmt.Errorf("synth: task %q: %w", task.Name, ErrInvalidFrequency)
	}
	return nil
}
