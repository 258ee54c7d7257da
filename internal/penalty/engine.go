// Package penalty deducts XP for every open task on every day that passed
// since the last recorded check.
package penalty

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
	"github.com/warrenleitner/moti-do-sub001/internal/xp"
)

var (
	// ErrNoCheckpoint means penalties have never been applied. It is the
	// normal first-run state.
	ErrNoCheckpoint = errors.New("no penalty checkpoint")

	// ErrMalformedCheckpoint wraps a stored checkpoint that is not a date.
	ErrMalformedCheckpoint = errors.New("malformed penalty checkpoint")
)

// CheckpointStore persists the last day through which penalties were applied.
type CheckpointStore interface {
	Load(ctx context.Context) (time.Time, error)
	Save(ctx context.Context, day time.Time) error
}

// Result summarises one ApplyPenalties call.
type Result struct {
	DaysProcessed     int
	Deductions        int
	PointsDeducted    int
	CheckpointWritten bool
}

// Engine applies daily penalties. It holds no lock: callers must run at most
// one ApplyPenalties per user at a time.
type Engine struct {
	Checkpoints CheckpointStore
	Logger      *slog.Logger
}

func New(checkpoints CheckpointStore, logger *slog.Logger) *Engine {
	return &Engine{Checkpoints: checkpoints, Logger: logger}
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Logger
}

// ApplyPenalties catches up on every day in (checkpoint, today]. For each
// such day, each open task created on or before it costs penalty_points XP,
// deducted as its own ledger call. The checkpoint is then set to today.
//
// With penalties disabled nothing happens and the checkpoint is left alone.
// Without a checkpoint nothing is owed yet and today becomes the checkpoint.
func (e *Engine) ApplyPenalties(ctx context.Context, user *xp.User, saver xp.UserSaver, today time.Time, cfg *scoring.Config, tasks []scoring.Task) (Result, error) {
	var res Result
	if !cfg.DailyPenalty.ApplyPenalty {
		return res, nil
	}
	today = scoring.Day(today)
	log := e.logger()

	last, err := e.Checkpoints.Load(ctx)
	switch {
	case errors.Is(err, ErrNoCheckpoint):
		return e.save(ctx, today, res)
	case errors.Is(err, ErrMalformedCheckpoint):
		log.Warn("ignoring malformed penalty checkpoint", slog.Any("err", err))
		return e.save(ctx, today, res)
	case err != nil:
		return res, fmt.Errorf("penalty checkpoint load: %w", err)
	}

	gap := -scoring.DaysBetween(today, last)
	if gap <= 0 {
		return res, nil
	}

	points := int(math.Round(cfg.DailyPenalty.PenaltyPoints))
	if points == 0 {
		return e.save(ctx, today, res)
	}
	start := scoring.Day(last.In(today.Location()))
	for i := 1; i <= gap; i++ {
		day := start.AddDate(0, 0, i)
		for j := range tasks {
			t := &tasks[j]
			if !owes(t, day) {
				continue
			}
			if err := xp.AddXP(ctx, user, saver, -points); err != nil {
				return res, fmt.Errorf("penalty %s task %s: %w", scoring.FormatDate(day), t.ID, err)
			}
			res.Deductions++
			res.PointsDeducted += points
		}
		res.DaysProcessed++
	}

	if res.Deductions > 0 {
		log.Info("penalties applied",
			slog.String("user", user.Name()),
			slog.Int("days", res.DaysProcessed),
			slog.Int("deductions", res.Deductions),
			slog.Int("points", res.PointsDeducted))
	}
	return e.save(ctx, today, res)
}

func (e *Engine) save(ctx context.Context, today time.Time, res Result) (Result, error) {
	if err := e.Checkpoints.Save(ctx, today); err != nil {
		return res, fmt.Errorf("penalty checkpoint save: %w", err)
	}
	res.CheckpointWritten = true
	return res, nil
}

// owes reports whether t is open and existed on day.
func owes(t *scoring.Task, day time.Time) bool {
	if t.IsComplete {
		return false
	}
	return scoring.DaysBetween(day, t.CreationDate) <= 0
}
