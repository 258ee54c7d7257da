package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/warrenleitner/moti-do-sub001/internal/penalty"
	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
	"github.com/warrenleitner/moti-do-sub001/internal/storage"
)

// ApplyPenalties catches the user up on daily penalties through today.
// Calls for the same user are serialised. All deductions of a run share one
// transaction, so a failed run leaves neither XP nor checkpoint changed.
func (s *Service) ApplyPenalties(ctx context.Context, today time.Time) (penalty.Result, error) {
	var res penalty.Result
	err := s.locks.With(s.userName, func() error {
		cfg, err := s.Config(ctx)
		if err != nil {
			return err
		}
		user, err := s.User(ctx)
		if err != nil {
			return err
		}
		tasks, err := s.tasks.ListAll(ctx)
		if err != nil {
			return err
		}
		return s.inTx(ctx, func(r repos) error {
			var err error
			res, err = s.penalties.ApplyPenalties(ctx, user, s.penaltySaver(r), today, cfg, tasks)
			return err
		})
	})
	if err != nil {
		return res, fmt.Errorf("apply penalties: %w", err)
	}
	return res, nil
}

// AdvanceDate moves the virtual date days forward from the current effective
// date and applies penalties for the new day.
func (s *Service) AdvanceDate(ctx context.Context, now time.Time, days int) (time.Time, penalty.Result, error) {
	if days < 1 {
		return time.Time{}, penalty.Result{}, ValidationError{Field: "days", Msg: "must be at least 1"}
	}
	eff, err := s.EffectiveDate(ctx, now)
	if err != nil {
		return time.Time{}, penalty.Result{}, err
	}
	next := eff.AddDate(0, 0, days)
	if err := s.state.Set(ctx, storage.StateVirtualDate, scoring.FormatDate(next)); err != nil {
		return time.Time{}, penalty.Result{}, err
	}
	s.logger.Info("date advanced", slog.String("date", scoring.FormatDate(next)))

	res, err := s.ApplyPenalties(ctx, next)
	if err != nil {
		return next, res, err
	}
	return next, res, nil
}
