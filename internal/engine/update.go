package engine

import (
	"context"
	"strings"
	"time"

	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
)

// TaskPatch lists the fields to change. Nil fields are left alone; the
// Clear flags remove an optional date.
type TaskPatch struct {
	Title        *string
	Description  *string
	StartDate    *time.Time
	ClearStart   bool
	DueDate      *time.Time
	ClearDue     bool
	Priority     *scoring.Priority
	Difficulty   *scoring.Difficulty
	Duration     *scoring.Duration
	Tags         *[]string
	Project      *string
	Dependencies *[]string
	IsHabit      *bool
	Recurrence   *scoring.Recurrence
}

// UpdateTask applies p to the task with id, with the same validation as
// CreateTask plus a cycle check on the new dependency set.
func (s *Service) UpdateTask(ctx context.Context, id string, p TaskPatch) (*scoring.Task, error) {
	t, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Title != nil {
		title, err := normalizeTitle(*p.Title)
		if err != nil {
			return nil, err
		}
		t.Title = title
	}
	if p.Description != nil {
		t.TextDescription = strings.TrimSpace(*p.Description)
	}
	switch {
	case p.ClearStart:
		t.StartDate = nil
	case p.StartDate != nil:
		t.StartDate = p.StartDate
	}
	switch {
	case p.ClearDue:
		t.DueDate = nil
	case p.DueDate != nil:
		t.DueDate = p.DueDate
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Difficulty != nil {
		t.Difficulty = *p.Difficulty
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if err := validateLevels(t.Priority, t.Difficulty, t.Duration); err != nil {
		return nil, err
	}
	if p.Tags != nil {
		t.Tags = cleanList(*p.Tags)
	}
	if p.Project != nil {
		t.Project = strings.TrimSpace(*p.Project)
	}

	if p.IsHabit != nil {
		t.IsHabit = *p.IsHabit
		if !t.IsHabit {
			t.Recurrence = scoring.RecurrenceNone
			t.CurrentStreak = 0
		}
	}
	if p.Recurrence != nil {
		t.Recurrence = *p.Recurrence
	}
	if t.Recurrence, err = habitRecurrence(t.IsHabit, t.Recurrence); err != nil {
		return nil, err
	}

	if p.Dependencies != nil {
		deps := cleanList(*p.Dependencies)
		all, err := s.tasks.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		if err := checkDependencies(all, t.ID, deps); err != nil {
			return nil, err
		}
		t.Dependencies = deps
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
