package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

type AgeUnit string

const (
	AgeUnitDays  AgeUnit = "days"
	AgeUnitWeeks AgeUnit = "weeks"
)

// Config is the full tunable parameter set for scoring. Build one with
// DefaultConfig or ParseConfig; a zero Config is not valid.
type Config struct {
	BaseScore            float64            `json:"base_score" yaml:"base_score"`
	FieldPresenceBonus   map[string]float64 `json:"field_presence_bonus" yaml:"field_presence_bonus"`
	DifficultyMultiplier map[string]float64 `json:"difficulty_multiplier" yaml:"difficulty_multiplier"`
	DurationMultiplier   map[string]float64 `json:"duration_multiplier" yaml:"duration_multiplier"`
	PriorityMultiplier   map[string]float64 `json:"priority_multiplier" yaml:"priority_multiplier"`
	AgeFactor            AgeFactor          `json:"age_factor" yaml:"age_factor"`
	DailyPenalty         DailyPenalty       `json:"daily_penalty" yaml:"daily_penalty"`
	DueDateProximity     DueDateProximity   `json:"due_date_proximity" yaml:"due_date_proximity"`
	StartDateAging       StartDateAging     `json:"start_date_aging" yaml:"start_date_aging"`
	DependencyChain      DependencyChain    `json:"dependency_chain" yaml:"dependency_chain"`
	HabitStreakBonus     HabitStreakBonus   `json:"habit_streak_bonus" yaml:"habit_streak_bonus"`
	TagMultipliers       map[string]float64 `json:"tag_multipliers" yaml:"tag_multipliers"`
	ProjectMultipliers   map[string]float64 `json:"project_multipliers" yaml:"project_multipliers"`
}

type AgeFactor struct {
	Unit              AgeUnit `json:"unit" yaml:"unit"`
	MultiplierPerUnit float64 `json:"multiplier_per_unit" yaml:"multiplier_per_unit"`
}

type DailyPenalty struct {
	ApplyPenalty  bool    `json:"apply_penalty" yaml:"apply_penalty"`
	PenaltyPoints float64 `json:"penalty_points" yaml:"penalty_points"`
}

type DueDateProximity struct {
	Enabled                     bool    `json:"enabled" yaml:"enabled"`
	OverdueMultiplierPerDay     float64 `json:"overdue_multiplier_per_day" yaml:"overdue_multiplier_per_day"`
	ApproachingThresholdDays    float64 `json:"approaching_threshold_days" yaml:"approaching_threshold_days"`
	ApproachingMultiplierPerDay float64 `json:"approaching_multiplier_per_day" yaml:"approaching_multiplier_per_day"`
}

type StartDateAging struct {
	Enabled           bool    `json:"enabled" yaml:"enabled"`
	BonusPointsPerDay float64 `json:"bonus_points_per_day" yaml:"bonus_points_per_day"`
}

type DependencyChain struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// DependentScorePercentage is a fraction (0.1 == 10%).
	DependentScorePercentage float64 `json:"dependent_score_percentage" yaml:"dependent_score_percentage"`
}

type HabitStreakBonus struct {
	Enabled           bool    `json:"enabled" yaml:"enabled"`
	BonusPerStreakDay float64 `json:"bonus_per_streak_day" yaml:"bonus_per_streak_day"`
	MaxBonus          float64 `json:"max_bonus" yaml:"max_bonus"`
}

// DefaultConfig returns the built-in configuration written on first use.
func DefaultConfig() *Config {
	return &Config{
		BaseScore: 10,
		FieldPresenceBonus: map[string]float64{
			"text_description": 5,
			"start_date":       5,
			"due_date":         5,
		},
		DifficultyMultiplier: map[string]float64{
			string(DifficultyNotSet):    1.0,
			string(DifficultyTrivial):   1.1,
			string(DifficultyLow):       1.5,
			string(DifficultyMedium):    2.0,
			string(DifficultyHigh):      3.0,
			string(DifficultyHerculean): 5.0,
		},
		DurationMultiplier: map[string]float64{
			string(DurationNotSet):    1.0,
			string(DurationMinuscule): 1.05,
			string(DurationShort):     1.2,
			string(DurationMedium):    1.5,
			string(DurationLong):      2.0,
			string(DurationOdysseyan): 3.0,
		},
		PriorityMultiplier: map[string]float64{
			string(PriorityNotSet):    1.0,
			string(PriorityTrivial):   1.0,
			string(PriorityLow):       1.2,
			string(PriorityMedium):    1.5,
			string(PriorityHigh):      2.0,
			string(PriorityDefconOne): 3.0,
		},
		AgeFactor:    AgeFactor{Unit: AgeUnitDays, MultiplierPerUnit: 0.01},
		DailyPenalty: DailyPenalty{ApplyPenalty: true, PenaltyPoints: 5},
		DueDateProximity: DueDateProximity{
			Enabled:                     true,
			OverdueMultiplierPerDay:     0.5,
			ApproachingThresholdDays:    14,
			ApproachingMultiplierPerDay: 0.1,
		},
		StartDateAging:     StartDateAging{Enabled: true, BonusPointsPerDay: 0.5},
		DependencyChain:    DependencyChain{Enabled: true, DependentScorePercentage: 0.1},
		HabitStreakBonus:   HabitStreakBonus{Enabled: true, BonusPerStreakDay: 1, MaxBonus: 20},
		TagMultipliers:     map[string]float64{},
		ProjectMultipliers: map[string]float64{},
	}
}

// Validate re-checks a Config assembled in code against the same rules
// ParseConfig applies to decoded documents.
func (c *Config) Validate() error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("config marshal: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("config unmarshal: %w", err)
	}
	_, err = ParseConfig(raw)
	return err
}

// ParseConfig validates a decoded configuration document and converts it to
// a Config. It stops at the first violation and returns a ConfigError naming
// the offending key path.
func ParseConfig(raw map[string]any) (*Config, error) {
	root := section{m: raw}
	cfg := &Config{}
	var err error

	if cfg.BaseScore, err = root.number("base_score", 0, nonNegative); err != nil {
		return nil, err
	}
	if cfg.FieldPresenceBonus, err = root.table("field_presence_bonus", true, 0, nonNegative); err != nil {
		return nil, err
	}
	if cfg.DifficultyMultiplier, err = root.table("difficulty_multiplier", true, 1, atLeastOne); err != nil {
		return nil, err
	}
	if cfg.DurationMultiplier, err = root.table("duration_multiplier", true, 1, atLeastOne); err != nil {
		return nil, err
	}
	if cfg.PriorityMultiplier, err = root.table("priority_multiplier", true, 1, atLeastOne); err != nil {
		return nil, err
	}

	age, err := root.object("age_factor")
	if err != nil {
		return nil, err
	}
	unit, err := age.str("unit")
	if err != nil {
		return nil, err
	}
	switch AgeUnit(unit) {
	case AgeUnitDays, AgeUnitWeeks:
		cfg.AgeFactor.Unit = AgeUnit(unit)
	default:
		return nil, badValue(age.key("unit"), `"days" or "weeks"`)
	}
	if cfg.AgeFactor.MultiplierPerUnit, err = age.number("multiplier_per_unit", 0, nonNegative); err != nil {
		return nil, err
	}

	penalty, err := root.object("daily_penalty")
	if err != nil {
		return nil, err
	}
	if cfg.DailyPenalty.ApplyPenalty, err = penalty.boolean("apply_penalty"); err != nil {
		return nil, err
	}
	if cfg.DailyPenalty.PenaltyPoints, err = penalty.integer("penalty_points", 0, nonNegativeInt); err != nil {
		return nil, err
	}

	due, err := root.object("due_date_proximity")
	if err != nil {
		return nil, err
	}
	if cfg.DueDateProximity.Enabled, err = due.boolean("enabled"); err != nil {
		return nil, err
	}
	if cfg.DueDateProximity.OverdueMultiplierPerDay, err = due.number("overdue_multiplier_per_day", 0, nonNegative); err != nil {
		return nil, err
	}
	if cfg.DueDateProximity.ApproachingThresholdDays, err = due.number("approaching_threshold_days", 0, nonNegative); err != nil {
		return nil, err
	}
	if cfg.DueDateProximity.ApproachingMultiplierPerDay, err = due.number("approaching_multiplier_per_day", 0, nonNegative); err != nil {
		return nil, err
	}

	start, err := root.object("start_date_aging")
	if err != nil {
		return nil, err
	}
	if cfg.StartDateAging.Enabled, err = start.boolean("enabled"); err != nil {
		return nil, err
	}
	if cfg.StartDateAging.BonusPointsPerDay, err = start.number("bonus_points_per_day", 0, nonNegative); err != nil {
		return nil, err
	}

	chain, err := root.object("dependency_chain")
	if err != nil {
		return nil, err
	}
	if cfg.DependencyChain.Enabled, err = chain.boolean("enabled"); err != nil {
		return nil, err
	}
	if cfg.DependencyChain.DependentScorePercentage, err = chain.number("dependent_score_percentage", 0, nonNegative); err != nil {
		return nil, err
	}

	streak, err := root.object("habit_streak_bonus")
	if err != nil {
		return nil, err
	}
	if cfg.HabitStreakBonus.Enabled, err = streak.boolean("enabled"); err != nil {
		return nil, err
	}
	if cfg.HabitStreakBonus.BonusPerStreakDay, err = streak.number("bonus_per_streak_day", 0, nonNegative); err != nil {
		return nil, err
	}
	if cfg.HabitStreakBonus.MaxBonus, err = streak.number("max_bonus", 0, nonNegative); err != nil {
		return nil, err
	}

	if cfg.TagMultipliers, err = root.table("tag_multipliers", false, 1, atLeastOne); err != nil {
		return nil, err
	}
	if cfg.ProjectMultipliers, err = root.table("project_multipliers", false, 1, atLeastOne); err != nil {
		return nil, err
	}

	return cfg, nil
}

const (
	nonNegative    = "a non-negative number"
	nonNegativeInt = "a non-negative integer"
	atLeastOne     = "a number >= 1.0"
)

// section is one mapping of the decoded document plus its dotted key path.
type section struct {
	path string
	m    map[string]any
}

func (s section) key(name string) string {
	if s.path == "" {
		return name
	}
	return s.path + "." + name
}

func (s section) get(name string) (any, error) {
	v, ok := s.m[name]
	if !ok {
		return nil, missingKey(s.key(name))
	}
	return v, nil
}

func (s section) object(name string) (section, error) {
	v, err := s.get(name)
	if err != nil {
		return section{}, err
	}
	m, ok := asMap(v)
	if !ok {
		return section{}, badValue(s.key(name), "an object")
	}
	return section{path: s.key(name), m: m}, nil
}

func (s section) number(name string, min float64, want string) (float64, error) {
	v, err := s.get(name)
	if err != nil {
		return 0, err
	}
	f, ok := asNumber(v)
	if !ok || f < min {
		return 0, badValue(s.key(name), want)
	}
	return f, nil
}

// integer is number restricted to whole values.
func (s section) integer(name string, min float64, want string) (float64, error) {
	f, err := s.number(name, min, want)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, badValue(s.key(name), want)
	}
	return f, nil
}

func (s section) boolean(name string) (bool, error) {
	v, err := s.get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, badValue(s.key(name), "a boolean")
	}
	return b, nil
}

func (s section) str(name string) (string, error) {
	v, err := s.get(name)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", badValue(s.key(name), "a string")
	}
	return str, nil
}

// table reads a name->number mapping. An optional table that is absent or
// null yields an empty map.
func (s section) table(name string, required bool, min float64, want string) (map[string]float64, error) {
	v, ok := s.m[name]
	if !ok || v == nil {
		if required {
			return nil, missingKey(s.key(name))
		}
		return map[string]float64{}, nil
	}
	m, ok := asMap(v)
	if !ok {
		return nil, badValue(s.key(name), "an object")
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]float64, len(m))
	for _, k := range keys {
		f, ok := asNumber(m[k])
		if !ok || f < min {
			return nil, badValue(s.key(name)+"."+k, want)
		}
		out[k] = f
	}
	return out, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
