package scoring

import (
	"math"
	"sort"
	"time"
)

// IsOverdue reports whether the task has a due date before the effective day.
func IsOverdue(t *Task, effective time.Time) bool {
	return t.DueDate != nil && DaysBetween(effective, *t.DueDate) < 0
}

// DueDateMultiplier grows linearly per overdue day, and inside the
// approaching window grows as the due date nears. It is exactly 1.0 at the
// threshold and beyond it.
func DueDateMultiplier(t *Task, cfg *Config, effective time.Time) float64 {
	p := cfg.DueDateProximity
	if !p.Enabled || t.DueDate == nil {
		return 1.0
	}
	until := DaysBetween(effective, *t.DueDate)
	if until < 0 {
		return 1.0 + float64(-until)*p.OverdueMultiplierPerDay
	}
	if float64(until) <= p.ApproachingThresholdDays {
		return 1.0 + (p.ApproachingThresholdDays-float64(until))*p.ApproachingMultiplierPerDay
	}
	return 1.0
}

// StartDateBonus is additive. Overdue tasks get none so lateness is only
// counted once, through the due-date multiplier.
func StartDateBonus(t *Task, cfg *Config, effective time.Time) float64 {
	a := cfg.StartDateAging
	if !a.Enabled || t.StartDate == nil {
		return 0
	}
	since := -DaysBetween(effective, *t.StartDate)
	if since < 0 || IsOverdue(t, effective) {
		return 0
	}
	return float64(since) * a.BonusPointsPerDay
}

// AgeUnits returns whole days or whole weeks since creation, never negative.
func AgeUnits(t *Task, unit AgeUnit, effective time.Time) int {
	days := -DaysBetween(effective, t.CreationDate)
	if days < 0 {
		return 0
	}
	if unit == AgeUnitWeeks {
		return days / 7
	}
	return days
}

func AgeMultiplier(t *Task, cfg *Config, effective time.Time) float64 {
	return 1.0 + float64(AgeUnits(t, cfg.AgeFactor.Unit, effective))*cfg.AgeFactor.MultiplierPerUnit
}

// StreakBonus is additive and only applies to habits.
func StreakBonus(t *Task, cfg *Config) float64 {
	b := cfg.HabitStreakBonus
	if !b.Enabled || !t.IsHabit || t.CurrentStreak <= 0 {
		return 0
	}
	return math.Min(float64(t.CurrentStreak)*b.BonusPerStreakDay, b.MaxBonus)
}

// levelMultiplier looks a level up in a multiplier table; absent levels are 1.0.
func levelMultiplier(table map[string]float64, level string) float64 {
	if m, ok := table[level]; ok {
		return m
	}
	return 1.0
}

func AttributeMultiplier(t *Task, cfg *Config) float64 {
	return levelMultiplier(cfg.PriorityMultiplier, t.Priority.String()) *
		levelMultiplier(cfg.DifficultyMultiplier, t.Difficulty.String()) *
		levelMultiplier(cfg.DurationMultiplier, t.Duration.String())
}

// TagMultiplier multiplies the configured factors of the task's tags. Tags
// missing from the table contribute nothing.
func TagMultiplier(t *Task, cfg *Config) float64 {
	m := 1.0
	for _, tag := range t.UniqueTags() {
		if f, ok := cfg.TagMultipliers[tag]; ok {
			m *= f
		}
	}
	return m
}

func ProjectMultiplier(t *Task, cfg *Config) float64 {
	if t.Project == "" {
		return 1.0
	}
	return levelMultiplier(cfg.ProjectMultipliers, t.Project)
}

// FieldPresenceBonus sums the configured bonus of every optional field the
// task has filled in. Unknown keys in the table are ignored.
func FieldPresenceBonus(t *Task, cfg *Config) float64 {
	fields := make([]string, 0, len(cfg.FieldPresenceBonus))
	for field := range cfg.FieldPresenceBonus {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	total := 0.0
	for _, field := range fields {
		if fieldPresent(t, field) {
			total += cfg.FieldPresenceBonus[field]
		}
	}
	return total
}

func fieldPresent(t *Task, field string) bool {
	switch field {
	case "text_description", "description":
		return t.TextDescription != ""
	case "start_date":
		return t.StartDate != nil
	case "due_date":
		return t.DueDate != nil
	case "tags":
		return len(t.UniqueTags()) > 0
	case "project":
		return t.Project != ""
	case "dependencies":
		return len(t.Dependencies) > 0
	case "priority":
		return t.Priority != "" && t.Priority != PriorityNotSet
	case "difficulty":
		return t.Difficulty != "" && t.Difficulty != DifficultyNotSet
	case "duration":
		return t.Duration != "" && t.Duration != DurationNotSet
	default:
		return false
	}
}
