package scoring

import (
	"fmt"
	"strings"
	"time"
)

// Priority, Difficulty and Duration are closed sets of levels. The zero value
// of each is NOT_SET, which scores like any level missing from the config.
type Priority string

const (
	PriorityNotSet    Priority = "NOT_SET"
	PriorityTrivial   Priority = "TRIVIAL"
	PriorityLow       Priority = "LOW"
	PriorityMedium    Priority = "MEDIUM"
	PriorityHigh      Priority = "HIGH"
	PriorityDefconOne Priority = "DEFCON_ONE"
)

func (p Priority) IsValid() bool {
	switch p {
	case "", PriorityNotSet, PriorityTrivial, PriorityLow, PriorityMedium, PriorityHigh, PriorityDefconOne:
		return true
	default:
		return false
	}
}

func (p Priority) String() string {
	if p == "" {
		return string(PriorityNotSet)
	}
	return string(p)
}

type Difficulty string

const (
	DifficultyNotSet    Difficulty = "NOT_SET"
	DifficultyTrivial   Difficulty = "TRIVIAL"
	DifficultyLow       Difficulty = "LOW"
	DifficultyMedium    Difficulty = "MEDIUM"
	DifficultyHigh      Difficulty = "HIGH"
	DifficultyHerculean Difficulty = "HERCULEAN"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case "", DifficultyNotSet, DifficultyTrivial, DifficultyLow, DifficultyMedium, DifficultyHigh, DifficultyHerculean:
		return true
	default:
		return false
	}
}

func (d Difficulty) String() string {
	if d == "" {
		return string(DifficultyNotSet)
	}
	return string(d)
}

type Duration string

const (
	DurationNotSet    Duration = "NOT_SET"
	DurationMinuscule Duration = "MINUSCULE"
	DurationShort     Duration = "SHORT"
	DurationMedium    Duration = "MEDIUM"
	DurationLong      Duration = "LONG"
	DurationOdysseyan Duration = "ODYSSEYAN"
)

func (d Duration) IsValid() bool {
	switch d {
	case "", DurationNotSet, DurationMinuscule, DurationShort, DurationMedium, DurationLong, DurationOdysseyan:
		return true
	default:
		return false
	}
}

func (d Duration) String() string {
	if d == "" {
		return string(DurationNotSet)
	}
	return string(d)
}

func normalizeLevel(input string) string {
	s := strings.TrimSpace(strings.ToUpper(input))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	if s == "" {
		return "NOT_SET"
	}
	return s
}

// ParsePriority parses user input such as "high" or "defcon-one".
func ParsePriority(input string) (Priority, error) {
	p := Priority(normalizeLevel(input))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority: %q", input)
	}
	return p, nil
}

// ParseDifficulty accepts EASY and HARD as aliases of LOW and HIGH.
func ParseDifficulty(input string) (Difficulty, error) {
	s := normalizeLevel(input)
	switch s {
	case "EASY":
		s = string(DifficultyLow)
	case "HARD":
		s = string(DifficultyHigh)
	}
	d := Difficulty(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid difficulty: %q", input)
	}
	return d, nil
}

func ParseDuration(input string) (Duration, error) {
	d := Duration(normalizeLevel(input))
	if !d.IsValid() {
		return "", fmt.Errorf("invalid duration: %q", input)
	}
	return d, nil
}

type Recurrence string

const (
	RecurrenceNone    Recurrence = ""
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

func ParseRecurrence(input string) (Recurrence, error) {
	r := Recurrence(strings.TrimSpace(strings.ToLower(input)))
	if !r.IsValid() {
		return "", fmt.Errorf("invalid recurrence: %q", input)
	}
	return r, nil
}

// Next returns the day the next occurrence falls due after day.
func (r Recurrence) Next(day time.Time) (time.Time, error) {
	switch r {
	case RecurrenceDaily:
		return day.AddDate(0, 0, 1), nil
	case RecurrenceWeekly:
		return day.AddDate(0, 0, 7), nil
	case RecurrenceMonthly:
		return day.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, fmt.Errorf("invalid recurrence: %q", r)
	}
}

// Task is a to-do item as seen by the scoring engine. The engine only reads it.
type Task struct {
	ID              string
	Title           string
	TextDescription string
	CreationDate    time.Time
	StartDate       *time.Time
	DueDate         *time.Time
	Priority        Priority
	Difficulty      Difficulty
	Duration        Duration
	Tags            []string
	Project         string
	Dependencies    []string
	IsComplete      bool
	CompletionDate  *time.Time

	IsHabit       bool
	Recurrence    Recurrence
	CurrentStreak int
	BestStreak    int
}

// UniqueTags returns the task's tags with duplicates and blanks removed,
// preserving first-seen order.
func (t *Task) UniqueTags() []string {
	if len(t.Tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(t.Tags))
	out := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// DependsOn reports whether id is one of the task's dependencies.
func (t *Task) DependsOn(id string) bool {
	for _, dep := range t.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}
