package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dori/checkmark/internal/model"
)

// timeLayout keeps sub-second precision so a save/load round trip is exact
const timeLayout = time.RFC3339Nano

const darkModeKey = "dark_mode"

// LoadState returns every task in stored order plus the theme flag.
// A row that cannot be read as a valid task fails the whole load.
func (db *DB) LoadState(ctx context.Context) (model.Snapshot, error) {
	tasks, err := db.GetTasks(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}

	dark, err := db.GetDarkMode(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}

	return model.Snapshot{Tasks: tasks, DarkMode: dark}, nil
}

// GetTasks returns all tasks ordered by position
func (db *DB) GetTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, text, completed, priority, category, due_date, created_at
		FROM tasks
		ORDER BY position, created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// SaveTasks replaces the stored collection with tasks, in order
func (db *DB) SaveTasks(ctx context.Context, tasks []model.Task) error {
	return db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
			return fmt.Errorf("failed to clear tasks: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO tasks (id, text, completed, priority, category, due_date, created_at, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range tasks {
			var category, dueDate interface{}
			if t.Category != "" {
				category = t.Category
			}
			if t.DueDate != nil {
				dueDate = t.DueDate.Format(timeLayout)
			}

			completed := 0
			if t.Completed {
				completed = 1
			}

			_, err := stmt.ExecContext(ctx,
				t.ID, t.Text, completed, string(t.Priority), category, dueDate,
				t.CreatedAt.Format(timeLayout), i,
			)
			if err != nil {
				return fmt.Errorf("failed to insert task %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

// GetDarkMode returns the saved theme flag, false when never saved
func (db *DB) GetDarkMode(ctx context.Context) (bool, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, darkModeKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	dark, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s setting %q: %w", darkModeKey, value, err)
	}
	return dark, nil
}

// SaveDarkMode stores the theme flag
func (db *DB) SaveDarkMode(ctx context.Context, dark bool) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, darkModeKey, strconv.FormatBool(dark))
	return err
}

// Helper functions

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTaskRow(s scanner) (*model.Task, error) {
	var t model.Task
	var completed int
	var priority, createdAt string
	var category, dueDate *string

	err := s.Scan(&t.ID, &t.Text, &completed, &priority, &category, &dueDate, &createdAt)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(t.Text) == "" {
		return nil, fmt.Errorf("task %s has empty text", t.ID)
	}

	t.Completed = completed == 1
	t.Priority = model.Priority(priority)
	if !t.Priority.Valid() {
		return nil, fmt.Errorf("task %s has unknown priority %q", t.ID, priority)
	}
	if category != nil {
		t.Category = *category
	}

	t.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("task %s has invalid created_at: %w", t.ID, err)
	}

	if dueDate != nil {
		parsed, err := time.Parse(timeLayout, *dueDate)
		if err != nil {
			return nil, fmt.Errorf("task %s has invalid due_date: %w", t.ID, err)
		}
		t.DueDate = &parsed
	}

	return &t, nil
}
