package synth

import (
	"errors"
	"testing"
	"time"

	"github.com/example/weekly-planner/internal/grid"
)

// testWeek starts Monday 2024-01-01 in UTC.
func testWeek() grid.Window {
	return grid.Window{Start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

func testConstraints() Constraints {
	return Constraints{
		WorkStart:        TimeOfDay{Hour: 9},
		WorkEnd:          TimeOfDay{Hour: 17},
		ExcludedWeekdays: []time.Weekday{time.Tuesday},
		MinGapMinutes:    30,
	}
}

func minutesBetween(a, b time.Time) int {
	return int(b.Sub(a) / time.Minute)
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	t.Run("spreads occurrences across distinct weekdays", func(t *testing.T) {
		t.Parallel()

		tasks := []Task{{Name: "Gym", DurationMinutes: 45, WeeklyFrequency: 3}}
		result, err := Synthesize(tasks, nil, testWeek(), testConstraints())
		if err != nil {
			t.Fatalf("Synthesize returned error: %v", err)
		}
		if len(result.Unplaced) != 0 {
			t.Fatalf("expected no unplaced occurrences, got %v", result.Unplaced)
		}
		if len(result.Scheduled) != 3 {
			t.Fatalf("expected 3 occurrences, got %d", len(result.Scheduled))
		}

		days := make(map[int]struct{})
		for _, event := range result.Scheduled {
			if got := minutesBetween(event.Start, event.End); got != 45 {
				t.Fatalf("expected 45 minute occurrence, got %d", got)
			}
			if event.Start.Weekday() == time.Tuesday {
				t.Fatalf("occurrence placed on excluded weekday: %v", event.Start)
			}
			startOffset := event.Start.Hour()*60 + event.Start.Minute()
			endOffset := startOffset + 45
			if startOffset < 9*60 || endOffset > 17*60 {
				t.Fatalf("occurrence outside working hours: %v", event.Start)
			}
			day := int(event.Start.Sub(testWeek().Start) / (24 * time.Hour))
			days[day] = struct{}{}
		}
		if len(days) != 3 {
			t.Fatalf("expected occurrences on 3 distinct days, got %d", len(days))
		}
	})

	t.Run("keeps the minimum gap around existing events", func(t *testing.T) {
		t.Parallel()

		week := testWeek()
		monday10 := week.Start.Add(10 * time.Hour)
		existing := []Event{{Name: "Meeting", Start: monday10, End: monday10.Add(time.Hour)}}

		// A full-day task leaves Monday room only before 09:30 or after 11:30.
		tasks := []Task{{Name: "Deep work", DurationMinutes: 120, WeeklyFrequency: 7}}
		constraints := testConstraints()
		constraints.ExcludedWeekdays = nil

		result, err := Synthesize(tasks, existing, week, constraints)
		if err != nil {
			t.Fatalf("Synthesize returned error: %v", err)
		}

		for _, event := range result.Scheduled {
			if !event.Start.Truncate(24 * time.Hour).Equal(week.Start) {
				continue
			}
			endsBy := week.Start.Add(9*time.Hour + 30*time.Minute)
			startsAt := week.Start.Add(11*time.Hour + 30*time.Minute)
			if event.End.After(endsBy) && event.Start.Before(startsAt) {
				t.Fatalf("Monday occurrence violates the gap: %v-%v", event.Start, event.End)
			}
		}
	})

	t.Run("reports unplaceable occurrences instead of forcing them", func(t *testing.T) {
		t.Parallel()

		constraints := Constraints{
			WorkStart:     TimeOfDay{Hour: 9},
			WorkEnd:       TimeOfDay{Hour: 10},
			MinGapMinutes: 0,
		}
		// 60-minute window per day, 8 occurrences requested.
		tasks := []Task{{Name: "Practice", DurationMinutes: 60, WeeklyFrequency: 8}}

		result, err := Synthesize(tasks, nil, testWeek(), constraints)
		if err != nil {
			t.Fatalf("Synthesize returned error: %v", err)
		}
		if len(result.Scheduled) != 7 {
			t.Fatalf("expected 7 placed occurrences, got %d", len(result.Scheduled))
		}
		if len(result.Unplaced) != 1 {
			t.Fatalf("expected 1 unplaced occurrence, got %d", len(result.Unplaced))
		}
		if result.Unplaced[0].TaskName != "Practice" || result.Unplaced[0].Occurrence != 7 {
			t.Fatalf("unexpected unplaced record: %+v", result.Unplaced[0])
		}
	})

	t.Run("is deterministic for fixed inputs", func(t *testing.T) {
		t.Parallel()

		tasks := []Task{
			{Name: "Gym", DurationMinutes: 45, WeeklyFrequency: 3},
			{Name: "Laundry", DurationMinutes: 30, WeeklyFrequency: 1},
			{Name: "Reading", DurationMinutes: 60, WeeklyFrequency: 5},
		}
		monday10 := testWeek().Start.Add(10 * time.Hour)
		existing := []Event{{Name: "Meeting", Start: monday10, End: monday10.Add(time.Hour)}}

		first, err := Synthesize(tasks, existing, testWeek(), testConstraints())
		if err != nil {
			t.Fatalf("Synthesize returned error: %v", err)
		}
		second, err := Synthesize(tasks, existing, testWeek(), testConstraints())
		if err != nil {
			t.Fatalf("Synthesize returned error: %v", err)
		}

		if len(first.Scheduled) != len(second.Scheduled) {
			t.Fatalf("runs disagree on placed count: %d vs %d", len(first.Scheduled), len(second.Scheduled))
		}
		for i := range first.Scheduled {
			if first.Scheduled[i] != second.Scheduled[i] {
				t.Fatalf("runs diverge at %d: %+v vs %+v", i, first.Scheduled[i], second.Scheduled[i])
			}
		}
	})

	t.Run("no pair of events violates the widened non-overlap", func(t *testing.T) {
		t.Parallel()

		tasks := []Task{
			{Name: "Gym", DurationMinutes: 45, WeeklyFrequency: 3},
			{Name: "Reading", DurationMinutes: 60, WeeklyFrequency: 5},
		}
		monday10 := testWeek().Start.Add(10 * time.Hour)
		existing := []Event{{Name: "Meeting", Start: monday10, End: monday10.Add(time.Hour)}}

		result, err := Synthesize(tasks, existing, testWeek(), testConstraints())
		if err != nil {
			t.Fatalf("Synthesize returned error: %v", err)
		}

		gap := 30 * time.Minute
		all := append(append([]Event(nil), existing...), result.Scheduled...)
		for _, placed := range result.Scheduled {
			for _, other := range all {
				if placed == other {
					continue
				}
				if placed.Start.Add(-gap).Before(other.End) && other.Start.Before(placed.End.Add(gap)) {
					t.Fatalf("events too close: %+v and %+v", placed, other)
				}
			}
		}
	})

	t.Run("rejects invalid tasks at the boundary", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name string
			task Task
			want error
		}{
			{"empty name", Task{DurationMinutes: 30, WeeklyFrequency: 1}, ErrEmptyName},
			{"duration not multiple of five", Task{Name: "Odd", DurationMinutes: 17, WeeklyFrequency: 1}, ErrInvalidDuration},
			{"zero duration", Task{Name: "Zero", DurationMinutes: 0, WeeklyFrequency: 1}, ErrInvalidDuration},
			{"zero frequency", Task{Name: "Never", DurationMinutes: 30, WeeklyFrequency: 0}, ErrInvalidFrequency},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := Synthesize([]Task{tc.task}, nil, testWeek(), testConstraints())
				if !errors.Is(err, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, err)
				}
			})
		}
	})

	t.Run("rejects malformed existing events", func(t *testing.T) {
		t.Parallel()

		start := testWeek().Start.Add(10 * time.Hour)
		existing := []Event{{Name: "Backwards", Start: start, End: start.Add(-time.Hour)}}
		_, err := Synthesize(nil, existing, testWeek(), testConstraints())
		if !errors.Is(err, ErrInvalidInterval) {
			t.Fatalf("expected ErrInvalidInterval, got %v", err)
		}
	})

	t.Run("rejects reversed working hours", func(t *testing.T) {
		t.Parallel()

		constraints := Constraints{WorkStart: TimeOfDay{Hour: 17}, WorkEnd: TimeOfDay{Hour: 9}}
		_, err := Synthesize(nil, nil, testWeek(), constraints)
		if !errors.Is(err, ErrInvalidWorkHours) {
			t.Fatalf("expected ErrInvalidWorkHours, got %v", err)
		}
	})
}
