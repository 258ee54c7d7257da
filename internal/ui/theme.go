package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
)

// MotiDo theme (CLI + TUI).

const (
	IconTask    = "📝"
	IconHabit   = "🔁"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconUndo    = "↩️"
	IconTrophy  = "🏆"
	IconBolt    = "⚡"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconClock   = "⏰"
	IconSkull   = "💀"
	IconGear    = "⚙️"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

func KindIcon(isHabit bool) string {
	if isHabit {
		return IconHabit
	}
	return IconTask
}

// XP renders a signed XP amount, green when positive and red when negative.
func XP(n int) string {
	switch {
	case n > 0:
		return Good.Render(fmt.Sprintf("+%d XP", n))
	case n < 0:
		return Bad.Render(fmt.Sprintf("%d XP", n))
	default:
		return Muted.Render("0 XP")
	}
}

// Score colours a task score by size.
func Score(n int) string {
	s := fmt.Sprintf("%4d", n)
	switch {
	case n >= 50:
		return Gold.Render(s)
	case n >= 20:
		return Good.Render(s)
	default:
		return Muted.Render(s)
	}
}

// Due describes a due date relative to the effective day.
func Due(t *scoring.Task, eff time.Time) string {
	if t.DueDate == nil {
		return ""
	}
	days := scoring.DaysBetween(eff, *t.DueDate)
	switch {
	case days < 0:
		return Bad.Render(fmt.Sprintf("%s overdue %dd", IconSkull, -days))
	case days == 0:
		return Warn.Render(IconClock + " due today")
	case days <= 3:
		return Warn.Render(fmt.Sprintf("due in %dd", days))
	default:
		return Muted.Render("due " + scoring.FormatDate(*t.DueDate))
	}
}

// ProgressBar draws a fixed-width bar for into/span.
func ProgressBar(into, span, width int) string {
	if span <= 0 || width <= 0 {
		return ""
	}
	filled := into * width / span
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return Good.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
}
