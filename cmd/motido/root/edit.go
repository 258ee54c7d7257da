package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warrenleitner/moti-do-sub001/internal/ui"
)

func newEditCmd() *cobra.Command {
	var f taskFlags
	var title string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's fields",
		Long: `Change the fields of an existing task. Only the flags you pass are applied.
Pass an empty value to --start or --due to clear that date.`,
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
			p, err := f.patch(ctx, cmd, a.svc)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				p.Title = &title
			}
			t, err := a.svc.UpdateTask(ctx, id, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
				ui.Good.Render(ui.IconGear+" Updated"),
				ui.KindIcon(t.IsHabit),
				ui.Muted.Render(shortID(t.ID)),
				t.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	f.register(cmd)
	return cmd
}
