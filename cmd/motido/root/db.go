package root

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/warrenleitner/moti-do-sub001/internal/config"
	"github.com/warrenleitner/moti-do-sub001/internal/engine"
	"github.com/warrenleitner/moti-do-sub001/internal/lock"
	"github.com/warrenleitner/moti-do-sub001/internal/penalty"
	"github.com/warrenleitner/moti-do-sub001/internal/storage"
	"github.com/warrenleitner/moti-do-sub001/internal/ui"
)

// app bundles what a command needs once the database is open.
type app struct {
	svc    *engine.Service
	loader *config.Loader
	dbPath string
}

func resolveConfigPath() (string, error) {
	if opts.configPath != "" {
		return opts.configPath, nil
	}
	return config.DefaultPath()
}

func openDB(ctx context.Context) (*sql.DB, string, func(), error) {
	path := opts.dbPath
	if path == "" {
		p, err := storage.ResolveDBPath()
		if err != nil {
			return nil, "", nil, err
		}
		path = p
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, "", nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, path, cleanup, nil
}

func openService(ctx context.Context) (*app, func(), error) {
	logger := newLogger(opts.verbose)

	cfgPath, err := resolveConfigPath()
	if err != nil {
		return nil, nil, err
	}
	cpPath := opts.checkpointPath
	if cpPath == "" {
		cpPath, err = storage.DefaultCheckpointPath()
		if err != nil {
			return nil, nil, err
		}
	}

	db, dbPath, cleanup, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	loader := config.NewLoader(cfgPath, logger)
	checkpoints := storage.NewFileCheckpoint(cpPath)
	svc := engine.NewService(db, loader, checkpoints, logger)
	return &app{svc: svc, loader: loader, dbPath: dbPath}, cleanup, nil
}

func lockPath(dbPath string) string {
	return dbPath + ".lock"
}

// withPenaltyLock runs fn holding the database's file lock. Every path that
// applies penalties takes it, so two motido processes never deduct the same
// days twice.
func (a *app) withPenaltyLock(fn func() error) error {
	fl := lock.NewFileLock(lockPath(a.dbPath))
	if err := fl.Lock(); err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()
	return fn()
}

// catchUp applies any daily penalties owed through today.
func (a *app) catchUp(ctx context.Context, out io.Writer) (time.Time, error) {
	var eff time.Time
	err := a.withPenaltyLock(func() error {
		var err error
		if eff, err = a.svc.EffectiveDate(ctx, time.Now()); err != nil {
			return err
		}
		res, err := a.svc.ApplyPenalties(ctx, eff)
		if err != nil {
			return err
		}
		printPenalties(out, res)
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return eff, nil
}

func printPenalties(out io.Writer, res penalty.Result) {
	if res.PointsDeducted == 0 {
		return
	}
	fmt.Fprintln(out, ui.Bad.Render(fmt.Sprintf("%s Penalty: -%d XP for %d open task-day(s) over %d day(s)",
		ui.IconSkull, res.PointsDeducted, res.Deductions, res.DaysProcessed)))
}
