package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
	"github.com/warrenleitner/moti-do-sub001/internal/ui"
)

func newDoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <id>",
		Short: "Complete a task and collect its XP",
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

			out := cmd.OutOrStdout()
			eff, err := a.catchUp(ctx, out)
			if err != nil {
				return err
			}
			id, err := a.svc.ResolveID(ctx, args[0])
			if err != nil {
				return err
			}
			res, err := a.svc.CompleteTask(ctx, id, eff)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s %s %s\n", ui.Good.Render(ui.IconDone+" Done"), ui.Muted.Render(shortID(res.TaskID)), ui.XP(res.XPAwarded))
			fmt.Fprintln(out, ui.LabelValue("Total XP", res.TotalXP))
			fmt.Fprintln(out, ui.LabelValue("Level", fmt.Sprintf("%d → %d", res.LevelBefore, res.LevelAfter)))
			if res.Streak > 0 {
				fmt.Fprintln(out, ui.LabelValue("Streak", res.Streak))
			}
			if res.NextDue != nil {
				fmt.Fprintln(out, ui.LabelValue("Next due", scoring.FormatDate(*res.NextDue)))
			}
			if res.LevelUp {
				fmt.Fprintln(out, ui.BadgeLevelUp+" "+ui.Gold.Render(ui.IconTrophy+fmt.Sprintf(" Reached level %d", res.LevelAfter)))
			}
			return nil
		},
	}

	return cmd
}
