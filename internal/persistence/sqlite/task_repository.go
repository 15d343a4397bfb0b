package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/weekly-planner/internal/persistence"
)

// CreateTask stores a new task definition.
func (s *Store) CreateTask(ctx context.Context, task persistence.Task) error {
	if task.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, name, duration_minutes, weekly_frequency, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.Name,
		task.DurationMinutes,
		task.WeeklyFrequency,
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return persistence.ErrAlreadyExists
		}
		return fmt.Errorf("sqlite: create task: %w", err)
	}
	return nil
}

// ListTasks returns all tasks ordered by creation time.
func (s *Store) ListTasks(ctx context.Context) ([]persistence.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, duration_minutes, weekly_frequency, created_at, updated_at
		 FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []persistence.Task
	for rows.Next() {
		var task persistence.Task
		var createdAt, updatedAt string
		if err := rows.Scan(&task.ID, &task.Name, &task.DurationMinutes, &task.WeeklyFrequency, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan task: %w", err)
		}
		if task.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
