package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
	"github.com/warrenleitner/moti-do-sub001/internal/storage"
	"github.com/warrenleitner/moti-do-sub001/internal/xp"
)

type CompleteResult struct {
	TaskID      string
	XPAwarded   int
	Breakdown   scoring.Breakdown
	TotalXP     int
	LevelBefore int
	LevelAfter  int
	LevelUp     bool
	Streak      int
	NextDue     *time.Time
}

// repos are the storage repos bound to one transaction.
type repos struct {
	tasks       *storage.TaskRepo
	users       *storage.UserRepo
	completions *storage.CompletionRepo
}

func (s *Service) inTx(ctx context.Context, fn func(r repos) error) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(repos{
			tasks:       storage.NewTaskRepo(tx),
			users:       storage.NewUserRepo(tx),
			completions: storage.NewCompletionRepo(tx),
		})
	})
}

// CompleteTask scores the task on eff against the whole collection, awards
// that XP through the ledger and records the completion. Habits stay open
// with an updated streak and their next due date.
func (s *Service) CompleteTask(ctx context.Context, id string, eff time.Time) (*CompleteResult, error) {
	eff = scoring.Day(eff)
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var task *scoring.Task
	for i := range all {
		if all[i].ID == id {
			task = &all[i]
			break
		}
	}
	if task == nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if task.IsComplete {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyComplete, id)
	}

	scorer, err := scoring.NewScorer(cfg, eff, all)
	if err != nil {
		return nil, err
	}
	b, err := scorer.Breakdown(task)
	if err != nil {
		return nil, err
	}

	user, err := s.User(ctx)
	if err != nil {
		return nil, err
	}
	res := &CompleteResult{
		TaskID:      id,
		XPAwarded:   b.XP,
		Breakdown:   b,
		LevelBefore: user.Level(),
	}

	completion := storage.Completion{
		TaskID:         id,
		UserName:       user.Name(),
		CompletedOn:    eff,
		XPAwarded:      b.XP,
		PrevDueDate:    task.DueDate,
		PrevStreak:     task.CurrentStreak,
		PrevBestStreak: task.BestStreak,
	}

	var nextDue time.Time
	if task.IsHabit {
		if res.Streak, err = nextStreak(task, eff); err != nil {
			return nil, err
		}
		if nextDue, err = nextDueDate(task, eff); err != nil {
			return nil, err
		}
		res.NextDue = &nextDue
	}

	err = s.inTx(ctx, func(r repos) error {
		if err := xp.AddXP(ctx, user, r.users, b.XP); err != nil {
			return err
		}
		if _, err := r.completions.Insert(ctx, completion); err != nil {
			return err
		}
		if !task.IsHabit {
			return r.tasks.MarkComplete(ctx, id, eff)
		}
		best := task.BestStreak
		if res.Streak > best {
			best = res.Streak
		}
		return r.tasks.UpdateHabitAfterCompletion(ctx, id, eff, &nextDue, res.Streak, best)
	})
	if err != nil {
		return nil, fmt.Errorf("complete task %s: %w", id, err)
	}

	res.TotalXP = user.TotalXP()
	res.LevelAfter = user.Level()
	res.LevelUp = res.LevelAfter > res.LevelBefore
	s.logger.Info("xp awarded",
		slog.String("task", id),
		slog.Int("xp", b.XP),
		slog.Int("total", res.TotalXP))
	return res, nil
}
