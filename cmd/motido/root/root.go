package root

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/warrenleitner/moti-do-sub001/internal/ui"
)

const Version = "0.2.0"

type globalOptions struct {
	dbPath         string
	configPath     string
	checkpointPath string
	verbose        bool
}

var opts globalOptions

var rootCmd = &cobra.Command{
	Use:           "motido",
	Short:         "MotiDo: a to-do list that scores your tasks in XP",
	Long:          "MotiDo is a local task tracker. Every task is worth XP, computed from a configurable scoring model; leaving tasks open costs XP each day.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.dbPath, "db", "", "SQLite database path (default $MOTIDO_DB or ~/.motido/motido.db)")
	pf.StringVar(&opts.configPath, "config", "", "Scoring config path, .json or .yaml (default $MOTIDO_CONFIG or ~/.motido/scoring_config.json)")
	pf.StringVar(&opts.checkpointPath, "checkpoint", "", "Penalty checkpoint file (default $MOTIDO_CHECKPOINT or ~/.motido/last_penalty_check.txt)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		newAddCmd(),
		newEditCmd(),
		newDoCmd(),
		newUndoCmd(),
		newListCmd(),
		newShowCmd(),
		newStatusCmd(),
		newAdvanceCmd(),
		newConfigCmd(),
		newBoardCmd(),
	)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
