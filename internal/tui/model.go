package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/warrenleitner/moti-do-sub001/internal/engine"
	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
	"github.com/warrenleitner/moti-do-sub001/internal/ui"
)

type boardModel struct {
	ctx context.Context
	svc *engine.Service
	now func() time.Time

	width  int
	height int

	status *engine.Status
	ranked []scoring.Ranked
	eff    time.Time

	selected int
	lastLog  string
	loading  bool
	err      error
}

type loadedMsg struct {
	status *engine.Status
	ranked []scoring.Ranked
	eff    time.Time
	err    error
}

type completedMsg struct {
	res *engine.CompleteResult
	err error
}

type restoredMsg struct {
	res *engine.RestoreResult
	err error
}

type configChangedMsg struct {
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service, now func() time.Time) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		now:     now,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		eff, err := m.svc.EffectiveDate(m.ctx, m.now())
		if err != nil {
			return loadedMsg{err: err}
		}
		st, err := m.svc.Status(m.ctx, eff)
		if err != nil {
			return loadedMsg{err: err}
		}
		ranked, err := m.svc.Scores(m.ctx, eff)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{status: st, ranked: ranked, eff: eff}
	}
}

func (m boardModel) completeCmd(id string) tea.Cmd {
	eff := m.eff
	return func() tea.Msg {
		res, err := m.svc.CompleteTask(m.ctx, id, eff)
		return completedMsg{res: res, err: err}
	}
}

func (m boardModel) restoreCmd(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.RestoreTask(m.ctx, id)
		return restoredMsg{res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		m.ranked = msg.ranked
		m.eff = msg.eff
		m.clampSelection()
		m.lastLog = fmt.Sprintf("Refreshed at %s.", m.now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Completed: +%d XP (level %d → %d)", msg.res.XPAwarded, msg.res.LevelBefore, msg.res.LevelAfter)
		if msg.res.LevelUp {
			m.lastLog += " " + ui.BadgeLevelUp
		}
		return m, m.loadCmd()
	case restoredMsg:
		if msg.err != nil {
			m.lastLog = "Undo failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Undone: -%d XP", msg.res.XPRemoved)
		return m, m.loadCmd()
	case configChangedMsg:
		if msg.err != nil {
			m.lastLog = "Config reload failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = "Config changed, re-scoring…"
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.ranked)-1 {
				m.selected++
			}
			return m, nil
		case "c", " ":
			r := m.current()
			if r == nil {
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Completing %s…", r.Task.Title)
			return m, m.completeCmd(r.Task.ID)
		case "u":
			r := m.current()
			if r == nil {
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Undoing %s…", r.Task.Title)
			return m, m.restoreCmd(r.Task.ID)
		}
	}
	return m, nil
}

func (m *boardModel) clampSelection() {
	if m.selected >= len(m.ranked) {
		m.selected = len(m.ranked) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m boardModel) current() *scoring.Ranked {
	if m.selected < 0 || m.selected >= len(m.ranked) {
		return nil
	}
	return &m.ranked[m.selected]
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}
	return m.renderHeader() + "\n\n" + m.renderMain() + "\n" + m.renderFooter()
}

func (m boardModel) renderHeader() string {
	if m.status == nil {
		return "MotiDo: loading…"
	}
	st := m.status
	return fmt.Sprintf("%s | %s | Level %d | XP %d %s | %s",
		ui.Title.Render("MotiDo"),
		st.UserName,
		st.Level,
		st.TotalXP,
		ui.ProgressBar(st.LevelProgress, st.LevelSpan, 20),
		scoring.FormatDate(m.eff))
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	out := []string{ui.PanelTitle.Render("Tasks by XP")}
	if len(m.ranked) == 0 {
		out = append(out, ui.Muted.Render("(nothing open)"))
		return strings.Join(out, "\n")
	}
	for i, r := range m.ranked {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s %s %s", cursor, ui.Score(r.Breakdown.XP), ui.KindIcon(r.Task.IsHabit), r.Task.Title)
		if due := ui.Due(&r.Task, m.eff); due != "" {
			line += "  " + due
		}
		if r.Task.IsHabit && r.Task.CurrentStreak > 0 {
			line += ui.Muted.Render(fmt.Sprintf("  streak %d", r.Task.CurrentStreak))
		}
		out = append(out, line)
	}
	if m.status != nil && m.status.DailyPenalty > 0 {
		out = append(out, "", ui.Warn.Render(fmt.Sprintf("%s %d XP at stake per day", ui.IconWarn, m.status.DailyPenalty)))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	keys := ui.Muted.Render("↑/↓ move · c complete · u undo · r refresh · q quit")
	return "\n" + keys + "\n" + m.lastLog
}
