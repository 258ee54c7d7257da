package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type CompletionRepo struct {
	db DBTX
}

func NewCompletionRepo(db DBTX) *CompletionRepo {
	return &CompletionRepo{db: db}
}

func (r *CompletionRepo) Insert(ctx context.Context, c Completion) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO task_completions (task_id, user_name, completed_on, xp_awarded, prev_due_date, prev_streak, prev_best_streak)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.TaskID, c.UserName, formatTime(c.CompletedOn), c.XPAwarded, nullTime(c.PrevDueDate), c.PrevStreak, c.PrevBestStreak)
	if err != nil {
		return 0, fmt.Errorf("completion insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("completion last insert id: %w", err)
	}
	return id, nil
}

const completionColumns = `id, task_id, user_name, completed_on, xp_awarded, prev_due_date, prev_streak, prev_best_streak`

// Last returns the most recent completion of taskID, or (nil, nil).
func (r *CompletionRepo) Last(ctx context.Context, taskID string) (*Completion, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+completionColumns+`
		FROM task_completions
		WHERE task_id = ?
		ORDER BY id DESC
		LIMIT 1
	`, taskID)
	c, err := scanCompletion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("completion last: %w", err)
	}
	return c, nil
}

// ListByTask returns every completion of taskID, oldest first.
func (r *CompletionRepo) ListByTask(ctx context.Context, taskID string) ([]Completion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+completionColumns+`
		FROM task_completions
		WHERE task_id = ?
		ORDER BY id ASC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("completion list: %w", err)
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("completion scan: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completion rows: %w", err)
	}
	return out, nil
}

func (r *CompletionRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM task_completions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("completion delete: %w", err)
	}
	return nil
}

func scanCompletion(row scanner) (*Completion, error) {
	var (
		c         Completion
		completed string
		prevDue   sql.NullString
	)
	if err := row.Scan(&c.ID, &c.TaskID, &c.UserName, &completed, &c.XPAwarded, &prevDue, &c.PrevStreak, &c.PrevBestStreak); err != nil {
		return nil, err
	}
	var err error
	if c.CompletedOn, err = parseTime(completed); err != nil {
		return nil, err
	}
	if c.PrevDueDate, err = parseNullTime(prevDue); err != nil {
		return nil, err
	}
	return &c, nil
}
