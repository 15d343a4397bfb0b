package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/weekly-planner/internal/persistence"
)

// UpsertEvent creates the event when its reconciliation key is new and
// updates the stored fields otherwise. The stored record is returned.
func (s *Store) UpsertEvent(ctx context.Context, event persistence.Event) (persistence.Event, error) {
	if event.ID == "" {
		return persistence.Event{}, persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	var externalID sql.NullString
	if event.ExternalID != nil && *event.ExternalID != "" {
		externalID.String = *event.ExternalID
		externalID.Valid = true
	}

	key := event.Key()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, sync_key, external_id, name, start_time, end_time, generated, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(sync_key) DO UPDATE SET
			external_id = excluded.external_id,
			name = excluded.name,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			generated = excluded.generated,
			updated_at = excluded.updated_at`,
		event.ID,
		key,
		externalID,
		event.Name,
		formatTime(event.Start),
		formatTime(event.End),
		boolToInt(event.Generated),
		formatTime(event.CreatedAt),
		formatTime(event.UpdatedAt),
	)
	if err != nil {
		return persistence.Event{}, fmt.Errorf("sqlite: upsert event: %w", err)
	}

	return s.GetEventByKey(ctx, key)
}

// GetEventByKey fetches the event with the given reconciliation key.
func (s *Store) GetEventByKey(ctx context.Context, key string) (persistence.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, external_id, name, start_time, end_time, generated, created_at, updated_at
		 FROM events WHERE sync_key = ?`, key)

	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.Event{}, persistence.ErrNotFound
	}
	return event, err
}

// ListEvents returns events whose start falls inside the filter bounds,
// ordered by start time.
func (s *Store) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	query := `SELECT id, external_id, name, start_time, end_time, generated, created_at, updated_at FROM events`
	var clauses []string
	var args []any
	if filter.StartsAfter != nil {
		clauses = append(clauses, "start_time >= ?")
		args = append(args, formatTime(*filter.StartsAfter))
	}
	if filter.EndsBefore != nil {
		clauses = append(clauses, "start_time < ?")
		args = append(args, formatTime(*filter.EndsBefore))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY start_time, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list events: %w", err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (persistence.Event, error) {
	var event persistence.Event
	var externalID sql.NullString
	var start, end, createdAt, updatedAt string
	var generated int

	err := row.Scan(&event.ID, &externalID, &event.Name, &start, &end, &generated, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Event{}, sql.ErrNoRows
		}
		return persistence.Event{}, fmt.Errorf("sqlite: scan event: %w", err)
	}

	if externalID.Valid {
		value := externalID.String
		event.ExternalID = &value
	}
	event.Generated = generated != 0
	if event.Start, err = parseTime(start); err != nil {
		return persistence.Event{}, err
	}
	if event.End, err = parseTime(end); err != nil {
		return persistence.Event{}, err
	}
	if event.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Event{}, err
	}
	if event.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
