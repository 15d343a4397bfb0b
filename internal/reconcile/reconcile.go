// Package reconcile synchronizes remote calendar events and locally
// synthesized candidates with the record store using idempotent upserts.
package reconcile

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/example/weekly-planner/internal/calendar"
	"github.com/example/weekly-planner/internal/persistence"
)

const (
	defaultConcurrency   = 4
	defaultRetryAttempts = 3
	defaultRetryBase     = 100 * time.Millisecond
)

// Store is the slice of the record store the reconciler writes to.
type Store interface {
	UpsertEvent(ctx context.Context, event persistence.Event) (persistence.Event, error)
}

// Creator is the slice of the calendar service the reconciler calls.
type Creator interface {
	CreateEvent(ctx context.Context, input calendar.EventInput) (calendar.CreatedEvent, error)
}

// Options tune reconciler behavior. Zero values select defaults.
type Options struct {
	// Concurrency bounds simultaneous remote event creations.
	Concurrency int
	// RetryAttempts bounds store upsert retries for one item.
	RetryAttempts int
	// RetryBase is the initial backoff delay, doubled per attempt.
	RetryBase time.Duration
	Logger    *slog.Logger
}

// Reconciler applies remote listings and candidate schedules to local state.
type Reconciler struct {
	store       Store
	creator     Creator
	idGenerator func() string
	opts        Options
}

// NewReconciler wires the reconciler's dependencies. idGenerator supplies ids
// for locally created records.
func NewReconciler(store Store, creator Creator, idGenerator func() string, opts Options) *Reconciler {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = defaultRetryAttempts
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = defaultRetryBase
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Reconciler{store: store, creator: creator, idGenerator: idGenerator, opts: opts}
}

// Input is one reconciliation batch.
type Input struct {
	// Local is the current snapshot of stored events for the window.
	Local []persistence.Event
	// Remote is the listing from the external sources.
	Remote []calendar.RemoteEvent
	// Candidates are synthesized events not yet created remotely.
	Candidates []calendar.EventInput
}

// Failure records one item that could not be reconciled.
type Failure struct {
	Name  string
	Start time.Time
	Err   error
}

// Result aggregates reconciliation outcomes by event key. The slices are
// sorted, so the result is independent of completion order.
type Result struct {
	Created []string
	Updated []string
	Skipped []string
	Failed  []Failure
}

// Reconcile upserts remote events into the store, creates candidate events in
// the external calendar, and persists the confirmations.
//
// Failures are per item and never abort the batch. Cancelling ctx stops new
// external calls; work already completed is not rolled back, and the partial
// result is returned alongside ctx's error.
func (r *Reconciler) Reconcile(ctx context.Context, input Input) (Result, error) {
	logger := r.opts.Logger

	byKey := make(map[string]persistence.Event, len(input.Local))
	for _, event := range input.Local {
		byKey[event.Key()] = event
	}

	var result Result

	for _, remote := range input.Remote {
		if err := ctx.Err(); err != nil {
			r.finish(&result)
			return result, err
		}

		externalID := remote.ExternalID
		incoming := persistence.Event{
			ID:         r.idGenerator(),
			ExternalID: &externalID,
			Name:       remote.Name,
			Start:      remote.Start,
			End:        remote.End,
		}
		key := incoming.Key()

		existing, known := byKey[key]
		if known {
			if unchanged(existing, incoming) {
				result.Skipped = append(result.Skipped, key)
				continue
			}
			incoming.ID = existing.ID
			incoming.Generated = existing.Generated
		}

		if _, err := r.upsertWithRetry(ctx, incoming); err != nil {
			logger.Warn("failed to upsert remote event", "key", key, "error", err)
			result.Failed = append(result.Failed, Failure{Name: remote.Name, Start: remote.Start, Err: err})
			continue
		}
		if known {
			result.Updated = append(result.Updated, key)
		} else {
			result.Created = append(result.Created, key)
		}
	}

	r.createCandidates(ctx, input.Candidates, &result)

	r.finish(&result)
	return result, ctx.Err()
}

// createCandidates issues remote creations with bounded concurrency and
// collects outcomes under a lock.
func (r *Reconciler) createCandidates(ctx context.Context, candidates []calendar.EventInput, result *Result) {
	if len(candidates) == 0 {
		return
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, r.opts.Concurrency)
	)

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			result.Failed = append(result.Failed, Failure{Name: candidate.Name, Start: candidate.Start, Err: err})
			mu.Unlock()
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(candidate calendar.EventInput) {
			defer wg.Done()
			defer func() { <-sem }()

			key, err := r.createOne(ctx, candidate)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, Failure{Name: candidate.Name, Start: candidate.Start, Err: err})
				return
			}
			result.Created = append(result.Created, key)
		}(candidate)
	}

	wg.Wait()
}

// createOne creates a single candidate remotely and persists the confirmed
// event locally, marked generated.
func (r *Reconciler) createOne(ctx context.Context, candidate calendar.EventInput) (string, error) {
	created, err := r.creator.CreateEvent(ctx, candidate)
	if err != nil {
		r.opts.Logger.Warn("failed to create remote event", "name", candidate.Name, "error", err)
		return "", err
	}

	start, end := created.ConfirmedStart, created.ConfirmedEnd
	if start.IsZero() || end.IsZero() {
		start, end = candidate.Start, candidate.End
	}

	externalID := created.ExternalID
	event := persistence.Event{
		ID:         r.idGenerator(),
		ExternalID: &externalID,
		Name:       candidate.Name,
		Start:      start,
		End:        end,
		Generated:  true,
	}

	if _, err := r.upsertWithRetry(ctx, event); err != nil {
		r.opts.Logger.Warn("failed to persist created event", "external_id", externalID, "error", err)
		return "", err
	}
	return event.Key(), nil
}

// upsertWithRetry retries transient store failures a bounded number of times
// with exponential backoff.
func (r *Reconciler) upsertWithRetry(ctx context.Context, event persistence.Event) (persistence.Event, error) {
	delay := r.opts.RetryBase
	var lastErr error

	for attempt := 0; attempt < r.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return persistence.Event{}, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		stored, err := r.store.UpsertEvent(ctx, event)
		if err == nil {
			return stored, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return persistence.Event{}, ctx.Err()
		}
	}

	return persistence.Event{}, lastErr
}

func (r *Reconciler) finish(result *Result) {
	sort.Strings(result.Created)
	sort.Strings(result.Updated)
	sort.Strings(result.Skipped)
	sort.Slice(result.Failed, func(i, j int) bool {
		if result.Failed[i].Name == result.Failed[j].Name {
			return result.Failed[i].Start.Before(result.Failed[j].Start)
		}
		return result.Failed[i].Name < result.Failed[j].Name
	})
}

func unchanged(existing, incoming persistence.Event) bool {
	return existing.Name == incoming.Name &&
		existing.Start.Equal(incoming.Start) &&
		existing.End.Equal(incoming.End)
}
