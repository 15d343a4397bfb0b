package testfixtures

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/example/weekly-planner/internal/application"
	"github.com/example/weekly-planner/internal/calendar"
	"github.com/example/weekly-planner/internal/reconcile"
)

// FakeCalendar is an in-memory calendar service. Created events become part
// of the listing, mirroring how the real service reports them back.
type FakeCalendar struct {
	mu     sync.Mutex
	nextID uint64
	events []calendar.RemoteEvent
}

// NewFakeCalendar returns an empty fake calendar.
func NewFakeCalendar() *FakeCalendar {
	return &FakeCalendar{}
}

// AddRemote seeds the calendar with events, as if created out of band.
func (f *FakeCalendar) AddRemote(events ...calendar.RemoteEvent) {
	f.mu.Lock()
	f.events = append(f.events, events...)
	f.mu.Unlock()
}

// ListEvents returns seeded and created events starting inside [timeMin, timeMax).
func (f *FakeCalendar) ListEvents(_ context.Context, timeMin, timeMax time.Time) ([]calendar.RemoteEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []calendar.RemoteEvent
	for _, event := range f.events {
		if event.Start.Before(timeMin) || !event.Start.Before(timeMax) {
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

// CreateEvent records the event and confirms it with a deterministic
// external identifier.
func (f *FakeCalendar) CreateEvent(_ context.Context, input calendar.EventInput) (calendar.CreatedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	externalID := fmt.Sprintf("fake-cal-%d", f.nextID)
	f.events = append(f.events, calendar.RemoteEvent{
		ExternalID: externalID,
		Name:       input.Name,
		Start:      input.Start,
		End:        input.End,
	})
	return calendar.CreatedEvent{ExternalID: externalID}, nil
}

// PlannerHarness bundles a fully wired planner service over temporary
// storage and a fake calendar, with a controllable clock.
type PlannerHarness struct {
	Service  *application.PlannerService
	Calendar *FakeCalendar
	Storage  *SQLiteHarness
	Clock    *Clock
	IDs      *IDGenerator
}

// NewPlannerHarness constructs a planner service wired to a migrated
// temporary database and a FakeCalendar. The clock starts at ReferenceTime.
func NewPlannerHarness(tb testing.TB) *PlannerHarness {
	tb.Helper()

	storage := NewSQLiteHarness(tb)
	fakeCalendar := NewFakeCalendar()
	clock := NewClock(time.Time{})
	ids := NewIDGenerator("fixture")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reconciler := reconcile.NewReconciler(storage.Events, fakeCalendar, ids.NextFunc(), reconcile.Options{
		RetryBase: time.Millisecond,
		Logger:    logger,
	})

	service := application.NewPlannerService(application.PlannerServiceParams{
		Tasks:       storage.Tasks,
		Events:      storage.Events,
		Calendar:    fakeCalendar,
		Reconciler:  reconciler,
		Constraints: DefaultConstraints(),
		WeekStart:   time.Monday,
		IDGenerator: ids.NextFunc(),
		Now:         clock.NowFunc(),
		Logger:      logger,
	})

	return &PlannerHarness{
		Service:  service,
		Calendar: fakeCalendar,
		Storage:  storage,
		Clock:    clock,
		IDs:      ids,
	}
}
