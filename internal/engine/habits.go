package engine

import (
	"time"

	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
)

// nextStreak returns the habit's streak after a completion on day. The streak
// continues when day is no later than the occurrence after the previous
// completion, and restarts at 1 otherwise.
func nextStreak(t *scoring.Task, day time.Time) (int, error) {
	if t.CompletionDate == nil {
		return 1, nil
	}
	last := scoring.Day(t.CompletionDate.In(day.Location()))
	if scoring.DaysBetween(last, day) <= 0 {
		return 0, ErrHabitDoneToday
	}
	if t.CurrentStreak == 0 {
		return 1, nil
	}
	window, err := t.Recurrence.Next(last)
	if err != nil {
		return 0, err
	}
	if scoring.DaysBetween(day, window) >= 0 {
		return t.CurrentStreak + 1, nil
	}
	return 1, nil
}

// nextDueDate moves a habit's due date to its first occurrence after day.
// Habits without a due date become due one recurrence after day.
func nextDueDate(t *scoring.Task, day time.Time) (time.Time, error) {
	if t.DueDate == nil {
		return t.Recurrence.Next(day)
	}
	next := scoring.Day(t.DueDate.In(day.Location()))
	for scoring.DaysBetween(day, next) <= 0 {
		var err error
		if next, err = t.Recurrence.Next(next); err != nil {
			return time.Time{}, err
		}
	}
	return next, nil
}
