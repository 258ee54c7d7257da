package engine

import (
	"context"
	"math"
	"time"

	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
	"github.com/warrenleitner/moti-do-sub001/internal/xp"
)

// Scores ranks every open task by its XP on eff.
func (s *Service) Scores(ctx context.Context, eff time.Time) ([]scoring.Ranked, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return scoring.RankTasks(all, cfg, eff)
}

// Breakdown scores one task against the whole collection.
func (s *Service) Breakdown(ctx context.Context, id string, eff time.Time) (*scoring.Task, scoring.Breakdown, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, scoring.Breakdown{}, err
	}
	all, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, scoring.Breakdown{}, err
	}
	for i := range all {
		if all[i].ID != id {
			continue
		}
		b, err := scoring.CalculateTaskScores(&all[i], all, cfg, eff)
		if err != nil {
			return nil, scoring.Breakdown{}, err
		}
		t := all[i]
		return &t, b, nil
	}
	_, err = s.getTask(ctx, id)
	return nil, scoring.Breakdown{}, err
}

type Status struct {
	UserName      string
	TotalXP       int
	Level         int
	LevelProgress int
	LevelSpan     int
	EffectiveDate time.Time
	OpenTasks     int
	OverdueTasks  int
	Habits        int
	DailyPenalty  int
}

func (s *Service) Status(ctx context.Context, eff time.Time) (*Status, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.User(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	into, span := xp.Progress(user.TotalXP())
	st := &Status{
		UserName:      user.Name(),
		TotalXP:       user.TotalXP(),
		Level:         user.Level(),
		LevelProgress: into,
		LevelSpan:     span,
		EffectiveDate: eff,
	}
	for i := range all {
		t := &all[i]
		if t.IsComplete {
			continue
		}
		st.OpenTasks++
		if t.IsHabit {
			st.Habits++
		}
		if scoring.IsOverdue(t, eff) {
			st.OverdueTasks++
		}
	}
	if cfg.DailyPenalty.ApplyPenalty {
		st.DailyPenalty = st.OpenTasks * int(math.Round(cfg.DailyPenalty.PenaltyPoints))
	}
	return st, nil
}
