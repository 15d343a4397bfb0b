package synth

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWorkHours indicates that the working window is empty or reversed.
var ErrInvalidWorkHours = errors.New("synth: work start must precede work end")

// ErrInvalidGap indicates a negative minimum gap.
var ErrInvalidGap = errors.New("synth: minimum gap must not be negative")

// TimeOfDay is a wall-clock offset inside a day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an "HH:MM" value.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("synth: invalid time of day %q: %w", value, err)
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

// Minutes returns the offset from midnight in minutes.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// String renders the canonical "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Constraints bound where task occurrences may be placed within a week.
type Constraints struct {
	WorkStart        TimeOfDay
	WorkEnd          TimeOfDay
	ExcludedWeekdays []time.Weekday
	MinGapMinutes    int
}

// Validate checks the constraint configuration itself.
func (c Constraints) Validate() error {
	if c.WorkStart.Minutes() >= c.WorkEnd.Minutes() {
		return ErrInvalidWorkHours
	}
	if c.MinGapMinutes < 0 {
		return ErrInvalidGap
	}
	return nil
}

func (c Constraints) excludedSet() map[time.Weekday]struct{} {
	set := make(map[time.Weekday]struct{}, len(c.ExcludedWeekdays))
	for _, day := range c.ExcludedWeekdays {
		set[day] = struct{}{}
	}
	return set
}
