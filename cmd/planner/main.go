package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/example/weekly-planner/internal/application"
	"github.com/example/weekly-planner/internal/calendar"
	"github.com/example/weekly-planner/internal/config"
	"github.com/example/weekly-planner/internal/generate"
	"github.com/example/weekly-planner/internal/grid"
	"github.com/example/weekly-planner/internal/ics"
	"github.com/example/weekly-planner/internal/logging"
	"github.com/example/weekly-planner/internal/persistence/sqlite"
	"github.com/example/weekly-planner/internal/reconcile"
)

func main() {
	var (
		addTask   = flag.String("add-task", "", "store a recurring task with the given name and exit")
		duration  = flag.Int("duration", 60, "occurrence duration in minutes for -add-task")
		frequency = flag.Int("frequency", 1, "weekly occurrence count for -add-task")
		listTasks = flag.Bool("list-tasks", false, "print stored tasks and exit")
		fetchOnce = flag.Bool("fetch", false, "sync the current week once and exit")
		planOnce  = flag.Bool("plan", false, "plan the current week once and exit")
		genOnce   = flag.Bool("generate", false, "generate the current week via the configured model and exit")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithLogger(ctx, logger)

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	service := newService(cfg, storage, logger)

	switch {
	case *addTask != "":
		err = runAddTask(ctx, service, *addTask, *duration, *frequency)
	case *listTasks:
		err = runListTasks(ctx, service)
	case *fetchOnce:
		err = runFetch(ctx, service)
	case *planOnce:
		err = runPlan(ctx, service)
	case *genOnce:
		err = runGenerate(ctx, service)
	default:
		err = runDaemon(ctx, service, cfg.SyncCron, logger)
	}
	if err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// newService wires the planner service from configuration. The calendar and
// generator clients are only attached when their endpoints are configured.
func newService(cfg config.Config, storage *sqlite.Store, logger *slog.Logger) *application.PlannerService {
	idGenerator := uuid.NewString

	var calendarService calendar.Service
	var creator reconcile.Creator
	if cfg.CalendarBaseURL != "" {
		client := calendar.NewClient(cfg.CalendarBaseURL, cfg.CalendarToken, nil)
		calendarService = client
		creator = client
	} else {
		creator = unavailableCreator{}
	}

	var generator generate.Generator
	if cfg.GeneratorAPIKey != "" {
		generator = generate.NewClient(cfg.GeneratorBaseURL, cfg.GeneratorAPIKey, cfg.GeneratorModel, nil)
	}

	feeds := buildFeeds(cfg.Feeds, nil)

	reconciler := reconcile.NewReconciler(storage, creator, idGenerator, reconcile.Options{
		Concurrency: cfg.SyncConcurrency,
		Logger:      logger,
	})

	return application.NewPlannerService(application.PlannerServiceParams{
		Tasks:       storage,
		Events:      storage,
		Calendar:    calendarService,
		Feeds:       feeds,
		Generator:   generator,
		Reconciler:  reconciler,
		Constraints: cfg.Constraints,
		WeekStart:   cfg.WeekStartDay,
		Location:    cfg.Location,
		IDGenerator: idGenerator,
		Now:         time.Now,
		Logger:      logger,
	})
}

// buildFeeds converts feed configuration into ICS listers.
func buildFeeds(configured []config.Feed, httpClient *http.Client) []calendar.Lister {
	if len(configured) == 0 {
		return nil
	}
	feeds := make([]calendar.Lister, 0, len(configured))
	for _, feed := range configured {
		feeds = append(feeds, ics.NewFeed(feed.ID, feed.URL, httpClient))
	}
	return feeds
}

// unavailableCreator stands in when no calendar endpoint is configured, so
// fetch-only deployments can still reconcile read-only feeds.
type unavailableCreator struct{}

func (unavailableCreator) CreateEvent(context.Context, calendar.EventInput) (calendar.CreatedEvent, error) {
	return calendar.CreatedEvent{}, application.ErrCalendarUnconfigured
}

func runAddTask(ctx context.Context, service *application.PlannerService, name string, duration, frequency int) error {
	task, err := service.CreateTask(ctx, application.TaskInput{
		Name:            name,
		DurationMinutes: duration,
		WeeklyFrequency: frequency,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created task %s (%s)\n", task.Name, task.ID)
	return nil
}

func runListTasks(ctx context.Context, service *application.PlannerService) error {
	tasks, err := service.ListTasks(ctx)
	if err != nil {
		return err
	}
	for _, task := range tasks {
		fmt.Printf("%s\t%dm x%d\t%s\n", task.ID, task.DurationMinutes, task.WeeklyFrequency, task.Name)
	}
	return nil
}

func runFetch(ctx context.Context, service *application.PlannerService) error {
	week := service.CurrentWeek()
	events, result, err := service.FetchWeek(ctx, week)
	if err != nil {
		return err
	}
	fmt.Printf("week of %s: %d events (%d created, %d updated, %d skipped, %d failed)\n",
		week.Start.Format("2006-01-02"), len(events),
		len(result.Created), len(result.Updated), len(result.Skipped), len(result.Failed))
	return nil
}

func runPlan(ctx context.Context, service *application.PlannerService) error {
	week := service.CurrentWeek()
	result, err := service.PlanWeek(ctx, week)
	if err != nil {
		return err
	}
	printPlan(week, result)
	return nil
}

func runGenerate(ctx context.Context, service *application.PlannerService) error {
	week := service.CurrentWeek()
	result, err := service.GenerateWeek(ctx, week)
	if err != nil {
		return err
	}
	printPlan(week, result)
	return nil
}

func printPlan(week grid.Window, result application.PlanResult) {
	fmt.Printf("week of %s: scheduled %d, unplaced %d, failed %d\n",
		week.Start.Format("2006-01-02"),
		len(result.Scheduled), len(result.Unplaced), len(result.Sync.Failed))
}

// runDaemon periodically syncs the current week until the context is
// cancelled.
func runDaemon(ctx context.Context, service *application.PlannerService, cronSpec string, logger *slog.Logger) error {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(cronSpec, func() {
		syncCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		if err := runFetch(logging.ContextWithLogger(syncCtx, logger), service); err != nil {
			logger.Error("periodic sync failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", cronSpec, err)
	}

	logger.Info("planner daemon started", "schedule", cronSpec)
	scheduler.Start()
	<-ctx.Done()

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("timed out waiting for running sync to finish")
	}
	logger.Info("planner daemon stopped")

	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}
