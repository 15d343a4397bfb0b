package synth

import (
	"errors"
	"testing"
	"time"
)

func TestValidateCandidate(t *testing.T) {
	t.Parallel()

	week := testWeek()
	constraints := testConstraints()

	monday := func(hour, minute int) time.Time {
		return week.Start.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}

	t.Run("accepts a conforming schedule", func(t *testing.T) {
		t.Parallel()

		candidate := []Event{
			{Name: "Gym", Start: monday(9, 0), End: monday(9, 45)},
			{Name: "Reading", Start: monday(10, 30), End: monday(11, 30)},
		}
		if err := ValidateCandidate(candidate, nil, week, constraints); err != nil {
			t.Fatalf("expected valid candidate, got %v", err)
		}
	})

	t.Run("accepts an empty schedule", func(t *testing.T) {
		t.Parallel()

		if err := ValidateCandidate(nil, nil, week, constraints); err != nil {
			t.Fatalf("expected empty schedule to be valid, got %v", err)
		}
	})

	t.Run("rejects the whole batch on a single violation", func(t *testing.T) {
		t.Parallel()

		candidate := []Event{
			{Name: "Gym", Start: monday(9, 0), End: monday(9, 45)},
			// Tuesday is excluded.
			{Name: "Reading", Start: monday(24+10, 0), End: monday(24+11, 0)},
		}

		err := ValidateCandidate(candidate, nil, week, constraints)
		var invalid *InvalidCandidateError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidCandidateError, got %v", err)
		}
		if len(invalid.Violations) != 1 {
			t.Fatalf("expected 1 violation, got %d", len(invalid.Violations))
		}
		if invalid.Violations[0].Index != 1 {
			t.Fatalf("expected violation at index 1, got %d", invalid.Violations[0].Index)
		}
	})

	t.Run("rejects overlap with existing events inside the gap", func(t *testing.T) {
		t.Parallel()

		existing := []Event{{Name: "Meeting", Start: monday(10, 0), End: monday(11, 0)}}
		candidate := []Event{{Name: "Gym", Start: monday(11, 15), End: monday(12, 0)}}

		err := ValidateCandidate(candidate, existing, week, constraints)
		var invalid *InvalidCandidateError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidCandidateError, got %v", err)
		}
	})

	t.Run("rejects candidates conflicting with each other", func(t *testing.T) {
		t.Parallel()

		candidate := []Event{
			{Name: "Gym", Start: monday(9, 0), End: monday(10, 0)},
			{Name: "Reading", Start: monday(10, 15), End: monday(11, 15)},
		}

		err := ValidateCandidate(candidate, nil, week, constraints)
		var invalid *InvalidCandidateError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidCandidateError, got %v", err)
		}
		if len(invalid.Violations) != 2 {
			t.Fatalf("expected both events flagged, got %d", len(invalid.Violations))
		}
	})

	t.Run("flags individual field problems", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name  string
			event Event
		}{
			{"empty name", Event{Start: monday(9, 0), End: monday(9, 30)}},
			{"reversed interval", Event{Name: "X", Start: monday(10, 0), End: monday(9, 0)}},
			{"ragged duration", Event{Name: "X", Start: monday(9, 0), End: monday(9, 17)}},
			{"outside week", Event{Name: "X", Start: monday(24*7+9, 0), End: monday(24*7+10, 0)}},
			{"before work start", Event{Name: "X", Start: monday(8, 0), End: monday(8, 30)}},
			{"past work end", Event{Name: "X", Start: monday(16, 30), End: monday(17, 30)}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				err := ValidateCandidate([]Event{tc.event}, nil, week, constraints)
				var invalid *InvalidCandidateError
				if !errors.As(err, &invalid) {
					t.Fatalf("expected InvalidCandidateError, got %v", err)
				}
			})
		}
	})
}
