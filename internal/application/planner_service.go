package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/weekly-planner/internal/calendar"
	"github.com/example/weekly-planner/internal/generate"
	"github.com/example/weekly-planner/internal/grid"
	"github.com/example/weekly-planner/internal/persistence"
	"github.com/example/weekly-planner/internal/reconcile"
	"github.com/example/weekly-planner/internal/synth"
)

// PlannerService orchestrates synthesis, generation, and reconciliation for
// one planner instance.
type PlannerService struct {
	tasks       persistence.TaskRepository
	events      persistence.EventRepository
	calendar    calendar.Service
	feeds       []calendar.Lister
	generator   generate.Generator
	reconciler  *reconcile.Reconciler
	constraints synth.Constraints
	weekStart   time.Weekday
	location    *time.Location
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
	cache       *weekCache
}

// PlannerServiceParams wires the planner's dependencies. Calendar, Feeds, and
// Generator are optional; operations requiring an absent collaborator fail
// with a sentinel error.
type PlannerServiceParams struct {
	Tasks       persistence.TaskRepository
	Events      persistence.EventRepository
	Calendar    calendar.Service
	Feeds       []calendar.Lister
	Generator   generate.Generator
	Reconciler  *reconcile.Reconciler
	Constraints synth.Constraints
	WeekStart   time.Weekday
	Location    *time.Location
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewPlannerService constructs the service, applying defaults for optional
// dependencies.
func NewPlannerService(params PlannerServiceParams) *PlannerService {
	if params.IDGenerator == nil {
		params.IDGenerator = func() string { return "" }
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.Location == nil {
		params.Location = time.UTC
	}
	return &PlannerService{
		tasks:       params.Tasks,
		events:      params.Events,
		calendar:    params.Calendar,
		feeds:       params.Feeds,
		generator:   params.Generator,
		reconciler:  params.Reconciler,
		constraints: params.Constraints,
		weekStart:   params.WeekStart,
		location:    params.Location,
		idGenerator: params.IDGenerator,
		now:         params.Now,
		logger:      defaultLogger(params.Logger),
		cache:       newWeekCache(0, params.Now),
	}
}

// CurrentWeek returns the window of the week containing the current instant.
func (s *PlannerService) CurrentWeek() grid.Window {
	return grid.WindowContaining(s.now().In(s.location), s.weekStart)
}

// CreateTask validates and stores a new recurring task.
func (s *PlannerService) CreateTask(ctx context.Context, input TaskInput) (persistence.Task, error) {
	logger := serviceLogger(ctx, s.logger, "planner", "create_task", "task_name", input.Name)

	vErr := &ValidationError{}
	if input.Name == "" {
		vErr.add("name", "name must not be empty")
	}
	if input.DurationMinutes <= 0 || input.DurationMinutes%grid.SlotMinutes != 0 {
		vErr.add("duration_minutes", "duration must be a positive multiple of 5 minutes")
	}
	if input.WeeklyFrequency <= 0 {
		vErr.add("weekly_frequency", "weekly frequency must be positive")
	}
	if vErr.HasErrors() {
		logger.Warn("task rejected", "error_kind", ErrorKind(vErr))
		return persistence.Task{}, vErr
	}

	task := persistence.Task{
		ID:              s.idGenerator(),
		Name:            input.Name,
		DurationMinutes: input.DurationMinutes,
		WeeklyFrequency: input.WeeklyFrequency,
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		logger.Error("failed to store task", "error", err)
		return persistence.Task{}, err
	}

	logger.Info("task created", "task_id", task.ID)
	return task, nil
}

// ListTasks returns all stored tasks.
func (s *PlannerService) ListTasks(ctx context.Context) ([]persistence.Task, error) {
	return s.tasks.ListTasks(ctx)
}

// FetchWeek lists remote events for the week from the calendar service and
// any configured feeds, reconciles them into the local store, and returns the
// refreshed local view. Source outages degrade to the local view.
func (s *PlannerService) FetchWeek(ctx context.Context, week grid.Window) ([]persistence.Event, reconcile.Result, error) {
	logger := serviceLogger(ctx, s.logger, "planner", "fetch_week", "week_start", week.Start)

	remote := s.listRemote(ctx, week, logger)

	local, err := s.events.ListEvents(ctx, windowFilter(week))
	if err != nil {
		return nil, reconcile.Result{}, fmt.Errorf("list local events: %w", err)
	}

	result, err := s.reconciler.Reconcile(ctx, reconcile.Input{Local: local, Remote: remote})
	if err != nil {
		return nil, result, err
	}

	refreshed, err := s.events.ListEvents(ctx, windowFilter(week))
	if err != nil {
		return nil, result, fmt.Errorf("list local events: %w", err)
	}

	s.cache.Set(weekCacheKey(week), refreshed)
	logger.Info("week fetched",
		"remote_count", len(remote),
		"created", len(result.Created),
		"updated", len(result.Updated),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
	)
	return refreshed, result, nil
}

// PlanWeek synthesizes occurrences for all stored tasks against the current
// week and pushes the placements through reconciliation.
func (s *PlannerService) PlanWeek(ctx context.Context, week grid.Window) (PlanResult, error) {
	logger := serviceLogger(ctx, s.logger, "planner", "plan_week", "week_start", week.Start)

	if s.calendar == nil {
		return PlanResult{}, ErrCalendarUnconfigured
	}

	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return PlanResult{}, fmt.Errorf("list tasks: %w", err)
	}

	existing, _, err := s.FetchWeek(ctx, week)
	if err != nil {
		return PlanResult{}, err
	}

	synthTasks := make([]synth.Task, 0, len(tasks))
	for _, task := range tasks {
		synthTasks = append(synthTasks, synth.Task{
			Name:            task.Name,
			DurationMinutes: task.DurationMinutes,
			WeeklyFrequency: task.WeeklyFrequency,
		})
	}

	synthesized, err := synth.Synthesize(synthTasks, toSynthEvents(existing), week, s.constraints)
	if err != nil {
		logger.Warn("synthesis rejected input", "error_kind", ErrorKind(err), "error", err)
		return PlanResult{}, err
	}

	syncResult, err := s.pushCandidates(ctx, week, synthesized.Scheduled)
	if err != nil {
		return PlanResult{}, err
	}

	logger.Info("week planned",
		"scheduled", len(synthesized.Scheduled),
		"unplaced", len(synthesized.Unplaced),
		"failed", len(syncResult.Failed),
	)
	return PlanResult{
		Scheduled: synthesized.Scheduled,
		Unplaced:  synthesized.Unplaced,
		Sync:      syncResult,
	}, nil
}

// GenerateWeek asks the external generator for a candidate schedule,
// validates it against the synthesis constraints, and pushes it through
// reconciliation. An invalid candidate is rejected in its entirety.
func (s *PlannerService) GenerateWeek(ctx context.Context, week grid.Window) (PlanResult, error) {
	logger := serviceLogger(ctx, s.logger, "planner", "generate_week", "week_start", week.Start)

	if s.generator == nil {
		return PlanResult{}, ErrGeneratorUnconfigured
	}
	if s.calendar == nil {
		return PlanResult{}, ErrCalendarUnconfigured
	}

	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return PlanResult{}, fmt.Errorf("list tasks: %w", err)
	}

	existing, _, err := s.FetchWeek(ctx, week)
	if err != nil {
		return PlanResult{}, err
	}

	synthTasks := make([]synth.Task, 0, len(tasks))
	for _, task := range tasks {
		synthTasks = append(synthTasks, synth.Task{
			Name:            task.Name,
			DurationMinutes: task.DurationMinutes,
			WeeklyFrequency: task.WeeklyFrequency,
		})
	}
	existingEvents := toSynthEvents(existing)

	candidate, err := s.generator.Generate(ctx, generate.PromptContext{
		Tasks:       synthTasks,
		Events:      existingEvents,
		Week:        week,
		Constraints: s.constraints,
	})
	if err != nil {
		logger.Error("generator call failed", "error", err)
		return PlanResult{}, fmt.Errorf("generate candidate: %w", err)
	}

	if err := synth.ValidateCandidate(candidate, existingEvents, week, s.constraints); err != nil {
		logger.Warn("candidate rejected", "error_kind", ErrorKind(err), "error", err)
		return PlanResult{}, err
	}

	syncResult, err := s.pushCandidates(ctx, week, candidate)
	if err != nil {
		return PlanResult{}, err
	}

	logger.Info("generated week applied", "scheduled", len(candidate), "failed", len(syncResult.Failed))
	return PlanResult{Scheduled: candidate, Sync: syncResult}, nil
}

// ProjectWeek returns the render-ready grid view for the week, preferring
// the cached listing when fresh.
func (s *PlannerService) ProjectWeek(ctx context.Context, week grid.Window) (WeekView, error) {
	events, ok := s.cache.Get(weekCacheKey(week))
	if !ok {
		var err error
		events, err = s.events.ListEvents(ctx, windowFilter(week))
		if err != nil {
			return WeekView{}, fmt.Errorf("list local events: %w", err)
		}
		s.cache.Set(weekCacheKey(week), events)
	}

	view := WeekView{Week: week}
	for _, event := range events {
		coord, ok, err := grid.Project(grid.Event{Name: event.Name, Start: event.Start, End: event.End}, week)
		if err != nil {
			serviceLogger(ctx, s.logger, "planner", "project_week").Warn("skipping malformed event", "event_id", event.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}
		view.Cells = append(view.Cells, EventCell{
			Event:      event,
			Coordinate: coord,
			Palette:    grid.PaletteIndex(event.Name),
		})
	}
	return view, nil
}

// pushCandidates reconciles synthesized events into the calendar and store.
func (s *PlannerService) pushCandidates(ctx context.Context, week grid.Window, scheduled []synth.Event) (reconcile.Result, error) {
	if len(scheduled) == 0 {
		return reconcile.Result{}, nil
	}

	candidates := make([]calendar.EventInput, 0, len(scheduled))
	for _, event := range scheduled {
		candidates = append(candidates, calendar.EventInput{Name: event.Name, Start: event.Start, End: event.End})
	}

	result, err := s.reconciler.Reconcile(ctx, reconcile.Input{Candidates: candidates})
	s.cache.Invalidate(weekCacheKey(week))
	return result, err
}

// listRemote gathers events from the calendar service and all feeds for the
// week. Failing sources are logged and skipped; listing is best effort.
func (s *PlannerService) listRemote(ctx context.Context, week grid.Window, logger *slog.Logger) []calendar.RemoteEvent {
	var remote []calendar.RemoteEvent

	if s.calendar != nil {
		events, err := s.calendar.ListEvents(ctx, week.Start, week.End())
		if err != nil {
			logger.Warn("calendar listing failed", "error", err)
		} else {
			remote = append(remote, events...)
		}
	}

	for i, feed := range s.feeds {
		events, err := feed.ListEvents(ctx, week.Start, week.End())
		if err != nil {
			logger.Warn("feed listing failed", "feed_index", i, "error", err)
			continue
		}
		remote = append(remote, events...)
	}

	return remote
}
