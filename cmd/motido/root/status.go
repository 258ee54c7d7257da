package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
	"github.com/warrenleitner/moti-do-sub001/internal/ui"
	"github.com/warrenleitner/moti-do-sub001/internal/xp"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show XP, level and what is at stake today",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			eff, err := a.catchUp(ctx, out)
			if err != nil {
				return err
			}
			st, err := a.svc.Status(ctx, eff)
			if err != nil {
				return err
			}
			next := xp.XPRequiredForLevel(st.Level + 1)

			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Status"))
			fmt.Fprintln(out, ui.LabelValue("User", st.UserName))
			fmt.Fprintln(out, ui.LabelValue("Date", scoring.FormatDate(st.EffectiveDate)))
			fmt.Fprintln(out, ui.LabelValue("Level", st.Level))
			fmt.Fprintln(out, ui.LabelValue("Total XP", fmt.Sprintf("%d (next level at %d)", st.TotalXP, next)))
			fmt.Fprintln(out, "  "+ui.ProgressBar(st.LevelProgress, st.LevelSpan, 30))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render(ui.IconTask+" Tasks"))
			fmt.Fprintln(out, ui.LabelValue("Open", st.OpenTasks))
			fmt.Fprintln(out, ui.LabelValue("Habits", st.Habits))
			overdue := fmt.Sprint(st.OverdueTasks)
			if st.OverdueTasks > 0 {
				overdue = ui.Bad.Render(overdue)
			}
			fmt.Fprintln(out, ui.LabelValue("Overdue", overdue))
			if st.DailyPenalty > 0 {
				fmt.Fprintln(out, ui.Warn.Render(fmt.Sprintf("%s %d XP will be deducted tomorrow if nothing gets done", ui.IconWarn, st.DailyPenalty)))
			}
			return nil
		},
	}

	return cmd
}
