package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warrenleitner/moti-do-sub001/internal/engine"
	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
)

var fixedNow = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

func loaded(t *testing.T, titles ...string) boardModel {
	t.Helper()
	m := newBoardModel(context.Background(), nil, func() time.Time { return fixedNow })
	var ranked []scoring.Ranked
	for i, title := range titles {
		ranked = append(ranked, scoring.Ranked{
			Task:      scoring.Task{ID: title, Title: title},
			Breakdown: scoring.Breakdown{XP: 30 - i},
		})
	}
	next, cmd := m.Update(loadedMsg{
		status: &engine.Status{UserName: "default_user", TotalXP: 600, Level: 2, LevelProgress: 100, LevelSpan: 915},
		ranked: ranked,
		eff:    scoring.Day(fixedNow),
	})
	assert.Nil(t, cmd)
	return next.(boardModel)
}

func press(t *testing.T, m boardModel, key string) (boardModel, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(boardModel), cmd
}

func TestBoardRendersRankedTasks(t *testing.T) {
	m := loaded(t, "Alpha", "Bravo")
	assert.False(t, m.loading)

	view := m.View()
	assert.Contains(t, view, "default_user")
	assert.Contains(t, view, "Level 2")
	assert.Contains(t, view, "2024-03-15")
	assert.Contains(t, view, "> ")
	assert.Contains(t, view, "Alpha")
	assert.Contains(t, view, "Bravo")
}

func TestBoardSelectionStaysInRange(t *testing.T) {
	m := loaded(t, "Alpha", "Bravo", "Charlie")

	m, _ = press(t, m, "up")
	assert.Equal(t, 0, m.selected)

	for i := 0; i < 5; i++ {
		m, _ = press(t, m, "j")
	}
	assert.Equal(t, 2, m.selected)

	m, _ = press(t, m, "k")
	assert.Equal(t, 1, m.selected)

	// A reload with fewer tasks pulls the cursor back in.
	next, _ := m.Update(loadedMsg{status: m.status, ranked: m.ranked[:1], eff: m.eff})
	m = next.(boardModel)
	assert.Equal(t, 0, m.selected)
}

func TestBoardKeysIssueCommands(t *testing.T) {
	m := loaded(t, "Alpha")

	_, cmd := press(t, m, "c")
	require.NotNil(t, cmd)
	_, cmd = press(t, m, "u")
	require.NotNil(t, cmd)

	m, cmd = press(t, m, "r")
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	_, cmd = press(t, m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestBoardIgnoresActionsOnEmptyList(t *testing.T) {
	m := loaded(t)
	assert.Contains(t, m.View(), "nothing open")

	_, cmd := press(t, m, "c")
	assert.Nil(t, cmd)
	_, cmd = press(t, m, "u")
	assert.Nil(t, cmd)
}

func TestBoardResults(t *testing.T) {
	m := loaded(t, "Alpha")

	next, cmd := m.Update(completedMsg{res: &engine.CompleteResult{TaskID: "Alpha", XPAwarded: 30, LevelBefore: 1, LevelAfter: 2, LevelUp: true}})
	m = next.(boardModel)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.lastLog, "+30 XP")
	assert.Contains(t, m.lastLog, "LEVEL UP")

	next, cmd = m.Update(restoredMsg{err: errors.New("boom")})
	m = next.(boardModel)
	assert.Nil(t, cmd)
	assert.Contains(t, m.lastLog, "Undo failed: boom")

	next, cmd = m.Update(configChangedMsg{})
	m = next.(boardModel)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.lastLog, "Config changed")

	next, cmd = m.Update(configChangedMsg{err: errors.New("bad json")})
	m = next.(boardModel)
	assert.Nil(t, cmd)
	assert.Contains(t, m.lastLog, "bad json")
}

func TestBoardLoadError(t *testing.T) {
	m := newBoardModel(context.Background(), nil, func() time.Time { return fixedNow })
	next, _ := m.Update(loadedMsg{err: errors.New("db locked")})
	assert.Contains(t, next.(boardModel).View(), "db locked")
}
