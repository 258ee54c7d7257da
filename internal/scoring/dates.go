package scoring

import (
	"math"
	"time"
)

const isoDate = "2006-01-02"

// Day truncates t to midnight of its calendar day, keeping t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of calendar days from a to b, measured in
// the location of a. It is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	loc := a.Location()
	from := Day(a)
	to := Day(b.In(loc))
	// Round absorbs DST shifts in zones that have them.
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// ParseDate accepts an ISO-8601 calendar date or an RFC 3339 timestamp.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(isoDate, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

// FormatDate renders t as an ISO-8601 calendar date.
func FormatDate(t time.Time) string {
	return t.Format(isoDate)
}
