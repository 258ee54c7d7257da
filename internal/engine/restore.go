package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/warrenleitner/moti-do-sub001/internal/xp"
)

type RestoreResult struct {
	TaskID     string
	XPRemoved  int
	TotalXP    int
	LevelAfter int
}

// RestoreTask undoes the most recent completion of a task: the XP it earned
// is deducted through the ledger and the task returns to its prior state.
func (s *Service) RestoreTask(ctx context.Context, id string) (*RestoreResult, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsHabit && !task.IsComplete {
		return nil, fmt.Errorf("%w: %s", ErrNotCompleted, id)
	}
	last, err := s.completions.Last(ctx, id)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotCompleted, id)
	}
	user, err := s.User(ctx)
	if err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(r repos) error {
		if err := xp.AddXP(ctx, user, r.users, -last.XPAwarded); err != nil {
			return err
		}
		if err := r.completions.Delete(ctx, last.ID); err != nil {
			return err
		}
		if !task.IsHabit {
			return r.tasks.Reopen(ctx, id)
		}

		prev, err := r.completions.Last(ctx, id)
		if err != nil {
			return err
		}
		task.CompletionDate = nil
		if prev != nil {
			day := prev.CompletedOn
			task.CompletionDate = &day
		}
		task.DueDate = last.PrevDueDate
		task.CurrentStreak = last.PrevStreak
		task.BestStreak = last.PrevBestStreak
		return r.tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, fmt.Errorf("restore task %s: %w", id, err)
	}

	s.logger.Info("completion undone",
		slog.String("task", id),
		slog.Int("xp", -last.XPAwarded),
		slog.Int("total", user.TotalXP()))
	return &RestoreResult{
		TaskID:     id,
		XPRemoved:  last.XPAwarded,
		TotalXP:    user.TotalXP(),
		LevelAfter: user.Level(),
	}, nil
}
