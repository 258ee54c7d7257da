package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			name TEXT PRIMARY KEY,
			total_xp INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			creation_date TEXT NOT NULL,
			start_date TEXT,
			due_date TEXT,

			priority TEXT NOT NULL DEFAULT '',
			difficulty TEXT NOT NULL DEFAULT '',
			duration TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			project TEXT NOT NULL DEFAULT '',
			dependencies TEXT NOT NULL DEFAULT '[]',

			is_complete INTEGER NOT NULL DEFAULT 0,
			completion_date TEXT,

			is_habit INTEGER NOT NULL DEFAULT 0,
			recurrence TEXT NOT NULL DEFAULT '',
			current_streak INTEGER NOT NULL DEFAULT 0,
			best_streak INTEGER NOT NULL DEFAULT 0
		);`,
		// One row per completion. The prev_* columns let a completion be undone.
		`CREATE TABLE IF NOT EXISTS task_completions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id TEXT NOT NULL,
			user_name TEXT NOT NULL,
			completed_on TEXT NOT NULL,
			xp_awarded INTEGER NOT NULL,
			prev_due_date TEXT,
			prev_streak INTEGER NOT NULL DEFAULT 0,
			prev_best_streak INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY(task_id) REFERENCES tasks(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS app_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_is_complete ON tasks(is_complete);`,
		`CREATE INDEX IF NOT EXISTS idx_task_completions_task_id ON task_completions(task_id, id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Columns added after the first schema; ignored when already present.
	alterStmts := []string{
		`ALTER TABLE tasks ADD COLUMN best_streak INTEGER NOT NULL DEFAULT 0;`,
	}
	for _, stmt := range alterStmts {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("migrate alter: %w", err)
		}
	}

	return nil
}
