package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/weekly-planner/internal/calendar"
	"github.com/example/weekly-planner/internal/persistence"
)

func TestPlannerHarnessPlansAndPersists(t *testing.T) {
	harness := NewPlannerHarness(t)
	ctx := context.Background()

	task := NewTaskFixture(WithTaskName("Gym"), WithTaskDuration(60), WithTaskFrequency(2))
	if err := harness.Storage.Tasks.CreateTask(ctx, task); err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	week := harness.Service.CurrentWeek()
	if !week.Start.Equal(ReferenceWeek().Start) {
		t.Fatalf("expected the reference week, got %v", week.Start)
	}

	result, err := harness.Service.PlanWeek(ctx, week)
	if err != nil {
		t.Fatalf("PlanWeek returned error: %v", err)
	}
	if len(result.Scheduled) != 2 {
		t.Fatalf("expected 2 scheduled occurrences, got %d", len(result.Scheduled))
	}

	stored, err := harness.Storage.Events.ListEvents(ctx, persistence.EventFilter{})
	if err != nil {
		t.Fatalf("failed to list stored events: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored events, got %d", len(stored))
	}
	for _, event := range stored {
		if !event.Generated {
			t.Errorf("event %q must be marked generated", event.Name)
		}
		if event.ExternalID == nil || *event.ExternalID == "" {
			t.Errorf("event %q must carry a confirmed external id", event.Name)
		}
	}
}

func TestPlannerHarnessFetchesRemoteEvents(t *testing.T) {
	harness := NewPlannerHarness(t)
	ctx := context.Background()

	week := ReferenceWeek()
	harness.Calendar.AddRemote(calendar.RemoteEvent{
		ExternalID: "ext-1",
		Name:       "Team sync",
		Start:      week.Day(2).Add(11 * time.Hour),
		End:        week.Day(2).Add(12 * time.Hour),
	})

	events, result, err := harness.Service.FetchWeek(ctx, week)
	if err != nil {
		t.Fatalf("FetchWeek returned error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(events))
	}
	if len(result.Created) != 1 {
		t.Fatalf("expected 1 created key, got %v", result.Created)
	}
	if _, err := harness.Storage.Events.GetEventByKey(ctx, "confirmed:ext-1"); err != nil {
		t.Fatalf("expected the remote event to be stored: %v", err)
	}
}

func TestEventFixtureRoundTripsThroughStorage(t *testing.T) {
	harness := NewPlannerHarness(t)
	ctx := context.Background()

	event := NewEventFixture(WithEventExternalID("ext-fixture"), WithEventGenerated(true))
	if _, err := harness.Storage.Events.UpsertEvent(ctx, event); err != nil {
		t.Fatalf("failed to store event fixture: %v", err)
	}

	stored, err := harness.Storage.Events.GetEventByKey(ctx, event.Key())
	if err != nil {
		t.Fatalf("failed to read back event: %v", err)
	}
	if stored.Name != event.Name || !stored.Generated {
		t.Fatalf("stored event diverged from fixture: %+v", stored)
	}
	if _, err := harness.Service.ProjectWeek(ctx, ReferenceWeek()); err != nil {
		t.Fatalf("ProjectWeek returned error: %v", err)
	}
}
