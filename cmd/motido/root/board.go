package root

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/warrenleitner/moti-do-sub001/internal/tui"
)

func newBoardCmd() *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the interactive task board",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := a.catchUp(ctx, cmd.OutOrStdout()); err != nil {
				return err
			}
			loader := a.loader
			if noWatch {
				loader = nil
			}
			return tui.RunBoard(ctx, a.svc, loader, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not re-score when the config file changes")
	return cmd
}
