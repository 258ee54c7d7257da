package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/warrenleitner/moti-do-sub001/internal/penalty"
	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
	"github.com/warrenleitner/moti-do-sub001/internal/ui"
)

func newAdvanceCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "advance [days]",
		Short: "Move the virtual date forward and apply penalties",
		Long: `Move MotiDo's virtual date forward (default 1 day) and apply the daily
penalties owed for the days skipped. Use --reset to go back to the wall clock.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return errors.New("at most one argument: days")
			}
			if len(args) == 1 {
				if _, err := strconv.Atoi(args[0]); err != nil {
					return errors.New("days must be an integer")
				}
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
			if reset {
				if err := a.svc.ResetDate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, ui.Good.Render(ui.IconClock+" Back on the wall clock: "+scoring.FormatDate(time.Now())))
				return nil
			}

			days := 1
			if len(args) == 1 {
				days, _ = strconv.Atoi(args[0])
			}
			var next time.Time
			var res penalty.Result
			err = a.withPenaltyLock(func() error {
				var err error
				next, res, err = a.svc.AdvanceDate(ctx, time.Now(), days)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Good.Render(fmt.Sprintf("%s Date is now %s", ui.IconClock, scoring.FormatDate(next))))
			printPenalties(out, res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Clear the virtual date")
	return cmd
}
