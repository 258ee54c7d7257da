package scoring

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawDefault(t *testing.T) map[string]any {
	t.Helper()
	data, err := json.Marshal(DefaultConfig())
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	return raw
}

// edit walks a dotted path and either deletes the leaf or sets it.
func edit(raw map[string]any, path string, value any, remove bool) {
	parts := strings.Split(path, ".")
	m := raw
	for _, p := range parts[:len(parts)-1] {
		m = m[p].(map[string]any)
	}
	leaf := parts[len(parts)-1]
	if remove {
		delete(m, leaf)
		return
	}
	m[leaf] = value
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestParseConfigRoundTrip(t *testing.T) {
	cfg, err := ParseConfig(rawDefault(t))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfigMissingKeys(t *testing.T) {
	keys := []string{
		"base_score",
		"field_presence_bonus",
		"difficulty_multiplier",
		"duration_multiplier",
		"priority_multiplier",
		"age_factor",
		"age_factor.unit",
		"age_factor.multiplier_per_unit",
		"daily_penalty",
		"daily_penalty.apply_penalty",
		"daily_penalty.penalty_points",
		"due_date_proximity.enabled",
		"due_date_proximity.overdue_multiplier_per_day",
		"due_date_proximity.approaching_threshold_days",
		"due_date_proximity.approaching_multiplier_per_day",
		"start_date_aging.bonus_points_per_day",
		"dependency_chain.dependent_score_percentage",
		"habit_streak_bonus.max_bonus",
	}
	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			raw := rawDefault(t)
			edit(raw, key, nil, true)

			_, err := ParseConfig(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Equal(t, "missing required key '"+key+"'", err.Error())

			var ce ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, key, ce.Key)
		})
	}
}

func TestParseConfigBadValues(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		value   any
		wantMsg string
	}{
		{"base score string", "base_score", "ten", "'base_score' must be a non-negative number"},
		{"base score bool", "base_score", true, "'base_score' must be a non-negative number"},
		{"negative threshold", "due_date_proximity.approaching_threshold_days", -1.0, "'due_date_proximity.approaching_threshold_days' must be a non-negative number"},
		{"multiplier below one", "difficulty_multiplier.HIGH", 0.5, "'difficulty_multiplier.HIGH' must be a number >= 1.0"},
		{"multiplier not number", "priority_multiplier.LOW", "big", "'priority_multiplier.LOW' must be a number >= 1.0"},
		{"table not object", "duration_multiplier", []any{1.0}, "'duration_multiplier' must be an object"},
		{"flag not bool", "daily_penalty.apply_penalty", "yes", "'daily_penalty.apply_penalty' must be a boolean"},
		{"negative penalty", "daily_penalty.penalty_points", -5.0, "'daily_penalty.penalty_points' must be a non-negative integer"},
		{"fractional penalty", "daily_penalty.penalty_points", 0.4, "'daily_penalty.penalty_points' must be a non-negative integer"},
		{"bad unit", "age_factor.unit", "months", `'age_factor.unit' must be "days" or "weeks"`},
		{"unit not string", "age_factor.unit", 7.0, "'age_factor.unit' must be a string"},
		{"section not object", "start_date_aging", "on", "'start_date_aging' must be an object"},
		{"tag multiplier below one", "tag_multipliers", map[string]any{"chore": 0.9}, "'tag_multipliers.chore' must be a number >= 1.0"},
		{"negative field bonus", "field_presence_bonus.due_date", -2.0, "'field_presence_bonus.due_date' must be a non-negative number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rawDefault(t)
			edit(raw, tt.path, tt.value, false)

			_, err := ParseConfig(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestParseConfigOptionalTables(t *testing.T) {
	raw := rawDefault(t)
	delete(raw, "tag_multipliers")
	raw["project_multipliers"] = nil

	cfg, err := ParseConfig(raw)
	require.NoError(t, err)
	assert.Empty(t, cfg.TagMultipliers)
	assert.NotNil(t, cfg.ProjectMultipliers)
}

func TestParseConfigAcceptsIntegerKinds(t *testing.T) {
	raw := rawDefault(t)
	raw["base_score"] = 12
	edit(raw, "due_date_proximity.approaching_threshold_days", int64(7), false)
	edit(raw, "difficulty_multiplier.HIGH", uint64(4), false)

	cfg, err := ParseConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, 12.0, cfg.BaseScore)
	assert.Equal(t, 7.0, cfg.DueDateProximity.ApproachingThresholdDays)
	assert.Equal(t, 4.0, cfg.DifficultyMultiplier["HIGH"])
}

func TestConfigValidateCatchesCodeBuiltValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AgeFactor.Unit = "fortnights"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "age_factor.unit")
}
