package xp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSaver struct {
	saved  []int
	failOn int
}

func (r *recordingSaver) SaveUser(_ context.Context, u *User) error {
	r.saved = append(r.saved, u.TotalXP())
	if r.failOn > 0 && len(r.saved) == r.failOn {
		return errors.New("disk full")
	}
	return nil
}

func TestAddXPSavesEveryCall(t *testing.T) {
	ctx := context.Background()
	u := RestoreUser("main", 100)
	saver := &recordingSaver{}

	deltas := []int{25, -5, 0, 40, -200}
	for _, d := range deltas {
		require.NoError(t, AddXP(ctx, u, saver, d))
	}

	assert.Equal(t, 100+25-5+0+40-200, u.TotalXP())
	assert.Equal(t, []int{125, 120, 120, 160, -40}, saver.saved)
}

func TestAddXPPropagatesSaveError(t *testing.T) {
	u := NewUser("main")
	saver := &recordingSaver{failOn: 1}

	err := AddXP(context.Background(), u, saver, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 10, u.TotalXP())
}

func TestAddXPWithFuncSaver(t *testing.T) {
	calls := 0
	saver := UserSaverFunc(func(context.Context, *User) error {
		calls++
		return nil
	})
	u := NewUser("main")
	require.NoError(t, AddXP(context.Background(), u, saver, 3))
	require.NoError(t, AddXP(context.Background(), u, saver, 4))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 7, u.TotalXP())
}

func TestAddXPNilUser(t *testing.T) {
	assert.Error(t, AddXP(context.Background(), nil, &recordingSaver{}, 1))
}

func TestLevelCurve(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{-50, 0},
		{0, 0},
		{499, 0},
		{500, 1},
		{1414, 1},
		{1415, 2},
		{2598, 2},
		{2599, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelForTotalXP(tt.total), "total %d", tt.total)
	}

	assert.Equal(t, 0, XPRequiredForLevel(0))
	assert.Equal(t, 500, XPRequiredForLevel(1))
	assert.Equal(t, 1415, XPRequiredForLevel(2))
	assert.Equal(t, 2, RestoreUser("x", 2000).Level())
}

func TestProgress(t *testing.T) {
	into, span := Progress(600)
	assert.Equal(t, 100, into)
	assert.Equal(t, 915, span)

	into, span = Progress(-10)
	assert.Equal(t, 0, into)
	assert.Equal(t, 500, span)
}
