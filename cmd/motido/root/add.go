package root

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/warrenleitner/moti-do-sub001/internal/ui"
)

func newAddCmd() *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task (or habit)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("title is required")
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

			eff, err := a.svc.EffectiveDate(ctx, time.Now())
			if err != nil {
				return err
			}
			in, err := f.input(ctx, a.svc, strings.Join(args, " "))
			if err != nil {
				return err
			}
			in.CreationDate = eff
			t, err := a.svc.CreateTask(ctx, in)
			if err != nil {
				return err
			}

			_, b, err := a.svc.Breakdown(ctx, t.ID, eff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s %s\n",
				ui.Good.Render(ui.IconPlus+" Added"),
				ui.KindIcon(t.IsHabit),
				ui.Muted.Render(shortID(t.ID)),
				t.Title,
				ui.Score(b.XP))
			return nil
		},
	}

	f.register(cmd)
	return cmd
}
