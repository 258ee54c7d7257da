package storage

import (
	"database/sql"
	"time"
)

// Completion records one completion of a task and the XP it earned.
type Completion struct {
	ID             int64
	TaskID         string
	UserName       string
	CompletedOn    time.Time
	XPAwarded      int
	PrevDueDate    *time.Time
	PrevStreak     int
	PrevBestStreak int
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}
