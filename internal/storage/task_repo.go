package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskRepo struct {
	db DBTX
}

func NewTaskRepo(db DBTX) *TaskRepo {
	return &TaskRepo{db: db}
}

const taskColumns = `id, title, description, creation_date, start_date, due_date,
	priority, difficulty, duration, tags, project, dependencies,
	is_complete, completion_date, is_habit, recurrence, current_streak, best_streak`

// Insert stores t, assigning a UUID when t.ID is empty and the current time
// when t.CreationDate is zero. It returns the stored task's ID.
func (r *TaskRepo) Insert(ctx context.Context, t *scoring.Task) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreationDate.IsZero() {
		t.CreationDate = time.Now()
	}
	tags, deps, err := encodeLists(t)
	if err != nil {
		return "", err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.TextDescription, formatTime(t.CreationDate), nullTime(t.StartDate), nullTime(t.DueDate),
		string(t.Priority), string(t.Difficulty), string(t.Duration), tags, t.Project, deps,
		boolToInt(t.IsComplete), nullTime(t.CompletionDate), boolToInt(t.IsHabit), string(t.Recurrence), t.CurrentStreak, t.BestStreak)
	if err != nil {
		return "", fmt.Errorf("task insert: %w", err)
	}
	return t.ID, nil
}

// Get returns the task with id, or (nil, nil) when there is none.
func (r *TaskRepo) Get(ctx context.Context, id string) (*scoring.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTaskRow(row)
}

// ListAll returns every task in insertion order.
func (r *TaskRepo) ListAll(ctx context.Context) ([]scoring.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("task list: %w", err)
	}
	defer rows.Close()

	var out []scoring.Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task list rows: %w", err)
	}
	return out, nil
}

// Update overwrites every stored field of t.
func (r *TaskRepo) Update(ctx context.Context, t *scoring.Task) error {
	tags, deps, err := encodeLists(t)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, creation_date = ?, start_date = ?, due_date = ?,
			priority = ?, difficulty = ?, duration = ?, tags = ?, project = ?, dependencies = ?,
			is_complete = ?, completion_date = ?, is_habit = ?, recurrence = ?,
			current_streak = ?, best_streak = ?
		WHERE id = ?
	`, t.Title, t.TextDescription, formatTime(t.CreationDate), nullTime(t.StartDate), nullTime(t.DueDate),
		string(t.Priority), string(t.Difficulty), string(t.Duration), tags, t.Project, deps,
		boolToInt(t.IsComplete), nullTime(t.CompletionDate), boolToInt(t.IsHabit), string(t.Recurrence),
		t.CurrentStreak, t.BestStreak, t.ID)
	if err != nil {
		return fmt.Errorf("task update: %w", err)
	}
	return requireRow(res, t.ID)
}

// Delete removes a task and its completion history.
func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM task_completions WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("task delete completions: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("task delete: %w", err)
	}
	return requireRow(res, id)
}

func (r *TaskRepo) MarkComplete(ctx context.Context, id string, completedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET is_complete = 1, completion_date = ? WHERE id = ?`, formatTime(completedAt), id)
	if err != nil {
		return fmt.Errorf("task mark complete: %w", err)
	}
	return requireRow(res, id)
}

func (r *TaskRepo) Reopen(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET is_complete = 0, completion_date = NULL WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("task reopen: %w", err)
	}
	return requireRow(res, id)
}

// UpdateHabitAfterCompletion keeps a habit open with its new streak and the
// due date of its next occurrence.
func (r *TaskRepo) UpdateHabitAfterCompletion(ctx context.Context, id string, completedAt time.Time, nextDue *time.Time, streak, best int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET is_complete = 0, completion_date = ?, due_date = ?, current_streak = ?, best_streak = ?
		WHERE id = ?
	`, formatTime(completedAt), nullTime(nextDue), streak, best, id)
	if err != nil {
		return fmt.Errorf("habit update after completion: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return nil
}

func encodeLists(t *scoring.Task) (tags, deps string, err error) {
	tagList := t.Tags
	if tagList == nil {
		tagList = []string{}
	}
	depList := t.Dependencies
	if depList == nil {
		depList = []string{}
	}
	tb, err := json.Marshal(tagList)
	if err != nil {
		return "", "", fmt.Errorf("marshal tags: %w", err)
	}
	db, err := json.Marshal(depList)
	if err != nil {
		return "", "", fmt.Errorf("marshal dependencies: %w", err)
	}
	return string(tb), string(db), nil
}

func scanTaskRow(row scanner) (*scoring.Task, error) {
	var (
		t                           scoring.Task
		created                     string
		start, due, completed       sql.NullString
		priority, difficulty, dur   string
		tagsRaw, depsRaw, recurring string
		isComplete, isHabit         int
	)

	if err := row.Scan(
		&t.ID, &t.Title, &t.TextDescription, &created, &start, &due,
		&priority, &difficulty, &dur, &tagsRaw, &t.Project, &depsRaw,
		&isComplete, &completed, &isHabit, &recurring, &t.CurrentStreak, &t.BestStreak,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("task scan: %w", err)
	}

	var err error
	if t.CreationDate, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("task %s creation_date: %w", t.ID, err)
	}
	if t.StartDate, err = parseNullTime(start); err != nil {
		return nil, fmt.Errorf("task %s start_date: %w", t.ID, err)
	}
	if t.DueDate, err = parseNullTime(due); err != nil {
		return nil, fmt.Errorf("task %s due_date: %w", t.ID, err)
	}
	if t.CompletionDate, err = parseNullTime(completed); err != nil {
		return nil, fmt.Errorf("task %s completion_date: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(tagsRaw), &t.Tags); err != nil {
		return nil, fmt.Errorf("task %s tags: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(depsRaw), &t.Dependencies); err != nil {
		return nil, fmt.Errorf("task %s dependencies: %w", t.ID, err)
	}

	if len(t.Tags) == 0 {
		t.Tags = nil
	}
	if len(t.Dependencies) == 0 {
		t.Dependencies = nil
	}
	t.Priority = scoring.Priority(priority)
	t.Difficulty = scoring.Difficulty(difficulty)
	t.Duration = scoring.Duration(dur)
	t.Recurrence = scoring.Recurrence(recurring)
	t.IsComplete = isComplete != 0
	t.IsHabit = isHabit != 0
	return &t, nil
}
