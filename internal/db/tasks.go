package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nick-dorsch/things2do/internal/store"
	"github.com/nick-dorsch/things2do/pkg/models"
)

// Save replaces every stored task with tasks, keeping their order.
func (db *DB) Save(ctx context.Context, tasks []*models.Task) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceTasks(ctx, tx, tasks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tasks: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}

func replaceTasks(ctx context.Context, exec executor, tasks []*models.Task) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}

	for i, r := range store.Serialize(tasks) {
		var endDate sql.NullString
		if r.EndDate != nil {
			endDate = sql.NullString{String: *r.EndDate, Valid: true}
		}
		_, err := exec.ExecContext(ctx, `
			INSERT INTO tasks (
				id, position, name, description, importance, urgency,
				importance_step, urgency_step, created_at, last_update, end_date
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, i, r.Name, r.Description, r.Importance, r.Urgency,
			r.ImportanceStep, r.UrgencyStep, r.CreatedAt, r.LastUpdate, endDate)
		if err != nil {
			return fmt.Errorf("failed to insert task %s: %w", r.Name, err)
		}
	}
	return nil
}

// Load returns every stored task in saved order.
func (db *DB) Load(ctx context.Context) ([]*models.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, description, importance, urgency, importance_step, urgency_step,
		       created_at, last_update, end_date
		FROM tasks
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t := &models.Task{}
		var createdAt, lastUpdate string
		var endDate sql.NullString
		err := rows.Scan(
			&t.ID, &t.Name, &t.Description, &t.Importance, &t.Urgency, &t.ImportanceStep, &t.UrgencyStep,
			&createdAt, &lastUpdate, &endDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		if t.CreatedAt, err = store.ParseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("task %s: invalid created_at: %w", t.ID, err)
		}
		if t.LastUpdate, err = store.ParseTimestamp(lastUpdate); err != nil {
			return nil, fmt.Errorf("task %s: invalid last_update: %w", t.ID, err)
		}
		if endDate.Valid {
			d, err := store.ParseDate(endDate.String)
			if err != nil {
				return nil, fmt.Errorf("task %s: invalid end_date: %w", t.ID, err)
			}
			t.EndDate = &d
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return tasks, nil
}

// CountTasks returns the number of stored tasks.
func (db *DB) CountTasks(ctx context.Context) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}
