package root

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
	"github.com/warrenleitner/moti-do-sub001/internal/ui"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task and how its score is built",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := a.svc.ResolveID(ctx, args[0])
			if err != nil {
				return err
			}
			eff, err := a.svc.EffectiveDate(ctx, time.Now())
			if err != nil {
				return err
			}
			t, b, err := a.svc.Breakdown(ctx, id, eff)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.KindIcon(t.IsHabit), t.Title))
			fmt.Fprintln(out, ui.LabelValue("ID", t.ID))
			if t.TextDescription != "" {
				fmt.Fprintln(out, ui.LabelValue("Description", t.TextDescription))
			}
			fmt.Fprintln(out, ui.LabelValue("Created", scoring.FormatDate(t.CreationDate)))
			if t.StartDate != nil {
				fmt.Fprintln(out, ui.LabelValue("Start", scoring.FormatDate(*t.StartDate)))
			}
			if t.DueDate != nil {
				fmt.Fprintln(out, ui.LabelValue("Due", scoring.FormatDate(*t.DueDate)+" "+ui.Due(t, eff)))
			}
			fmt.Fprintln(out, ui.LabelValue("Priority", t.Priority.String()))
			fmt.Fprintln(out, ui.LabelValue("Difficulty", t.Difficulty.String()))
			fmt.Fprintln(out, ui.LabelValue("Duration", t.Duration.String()))
			if tags := t.UniqueTags(); len(tags) > 0 {
				fmt.Fprintln(out, ui.LabelValue("Tags", strings.Join(tags, ", ")))
			}
			if t.Project != "" {
				fmt.Fprintln(out, ui.LabelValue("Project", t.Project))
			}
			if len(t.Dependencies) > 0 {
				short := make([]string, len(t.Dependencies))
				for i, d := range t.Dependencies {
					short[i] = shortID(d)
				}
				fmt.Fprintln(out, ui.LabelValue("Depends on", strings.Join(short, ", ")))
			}
			if t.IsHabit {
				fmt.Fprintln(out, ui.LabelValue("Recurrence", string(t.Recurrence)))
				fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%d (best %d)", t.CurrentStreak, t.BestStreak)))
			}
			if t.IsComplete && t.CompletionDate != nil {
				fmt.Fprintln(out, ui.LabelValue("Completed", scoring.FormatDate(*t.CompletionDate)))
			}

			fmt.Fprintln(out, "")
			fmt.Fprintln(out, ui.H2.Render(fmt.Sprintf("%s Score on %s", ui.IconSparkle, scoring.FormatDate(eff))))
			fmt.Fprintf(out, "  base %.2f = %.2f + field %.2f + start %.2f + streak %.2f\n", b.Base, b.BaseScore, b.FieldBonus, b.StartDateBonus, b.StreakBonus)
			fmt.Fprintf(out, "  × attributes %.2f × age %.2f × due %.2f × tags %.2f × project %.2f\n",
				b.AttributeMultiplier, b.AgeMultiplier, b.DueMultiplier, b.TagMultiplier, b.ProjectMultiplier)
			if b.DependencyBonus != 0 {
				fmt.Fprintf(out, "  + dependents %.2f\n", b.DependencyBonus)
			}
			fmt.Fprintf(out, "  = %.2f → %s\n", b.Raw, ui.XP(b.XP))
			if b.Penalty > 0 {
				fmt.Fprintln(out, ui.Warn.Render(fmt.Sprintf("  %s costs %d XP for each day it stays open", ui.IconClock, b.Penalty)))
			}
			return nil
		},
	}

	return cmd
}
