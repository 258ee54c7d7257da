package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/warrenleitner/moti-do-sub001/internal/ui"
)

func newListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open tasks, highest XP first",
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
			ranked, err := a.svc.Scores(ctx, eff)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, ui.Heading(ui.IconTask, "Tasks"))
			if len(ranked) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("Nothing open. Add one with `motido add`."))
			}
			for _, r := range ranked {
				t := r.Task
				line := fmt.Sprintf("%s %s %s %s", ui.Score(r.Breakdown.XP), ui.KindIcon(t.IsHabit), ui.Muted.Render(shortID(t.ID)), t.Title)
				if due := ui.Due(&t, eff); due != "" {
					line += "  " + due
				}
				if tags := t.UniqueTags(); len(tags) > 0 {
					line += "  " + ui.Muted.Render("#"+strings.Join(tags, " #"))
				}
				if t.IsHabit && t.CurrentStreak > 0 {
					line += "  " + ui.Gold.Render(fmt.Sprintf("%s %d", ui.IconBolt, t.CurrentStreak))
				}
				fmt.Fprintln(out, line)
			}

			if !all {
				return nil
			}
			tasks, err := a.svc.TaskRepo().ListAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, ui.H2.Render(ui.IconDone+" Completed"))
			for _, t := range tasks {
				if !t.IsComplete {
					continue
				}
				fmt.Fprintf(out, "- %s %s\n", ui.Muted.Render(shortID(t.ID)), ui.Muted.Render(t.Title))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Also list completed tasks")
	return cmd
}
