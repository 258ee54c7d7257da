package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warrenleitner/moti-do-sub001/internal/ui"
)

func newUndoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "undo <id>",
		Aliases: []string{"restore"},
		Short:   "Undo a task's last completion",
		Long: `Undo the most recent completion of a task.

This will:
- Deduct the XP that completion awarded
- Remove the completion record
- Reopen the task, or put a habit's streak and due date back`,
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
			before, _ := a.svc.TaskRepo().Get(ctx, id)
			res, err := a.svc.RestoreTask(ctx, id)
			if err != nil {
				return err
			}

			name := shortID(res.TaskID)
			if before != nil {
				name = fmt.Sprintf("%s %s %s", ui.KindIcon(before.IsHabit), shortID(res.TaskID), before.Title)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Warn.Render(ui.IconUndo+" Restored"), name, ui.Muted.Render(fmt.Sprintf("(-%d XP)", res.XPRemoved)))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Level", res.LevelAfter))
			return nil
		},
	}

	return cmd
}
