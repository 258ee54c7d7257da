// Package engine ties scoring, the XP ledger, penalties and storage into the
// operations the CLI and TUI call.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/warrenleitner/moti-do-sub001/internal/lock"
	"github.com/warrenleitner/moti-do-sub001/internal/penalty"
	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
	"github.com/warrenleitner/moti-do-sub001/internal/storage"
	"github.com/warrenleitner/moti-do-sub001/internal/xp"
)

// ConfigSource supplies the current scoring config. *config.Loader
// satisfies it.
type ConfigSource interface {
	Get(ctx context.Context) (*scoring.Config, error)
}

// StaticConfig is a ConfigSource that always returns the same config.
type StaticConfig struct {
	Config *scoring.Config
}

func (s StaticConfig) Get(context.Context) (*scoring.Config, error) {
	return s.Config, nil
}

type Service struct {
	db          *sql.DB
	config      ConfigSource
	users       *storage.UserRepo
	tasks       *storage.TaskRepo
	completions *storage.CompletionRepo
	state       *storage.StateRepo
	penalties   *penalty.Engine
	locks       *lock.MutexMap
	logger      *slog.Logger
	userName    string

	// penaltySaver picks the ledger saver for a penalty run's transaction.
	penaltySaver func(r repos) xp.UserSaver
}

func NewService(db *sql.DB, cfg ConfigSource, checkpoints penalty.CheckpointStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		db:          db,
		config:      cfg,
		users:       storage.NewUserRepo(db),
		tasks:       storage.NewTaskRepo(db),
		completions: storage.NewCompletionRepo(db),
		state:       storage.NewStateRepo(db),
		penalties:   penalty.New(checkpoints, logger),
		locks:       lock.NewMutexMap(),
		logger:      logger,
		userName:    storage.DefaultUserName,

		penaltySaver: func(r repos) xp.UserSaver { return r.users },
	}
}

func (s *Service) TaskRepo() *storage.TaskRepo             { return s.tasks }
func (s *Service) UserRepo() *storage.UserRepo             { return s.users }
func (s *Service) CompletionRepo() *storage.CompletionRepo { return s.completions }

func (s *Service) Config(ctx context.Context) (*scoring.Config, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load scoring config: %w", err)
	}
	return cfg, nil
}

func (s *Service) User(ctx context.Context) (*xp.User, error) {
	return s.users.GetOrCreate(ctx, s.userName)
}

// EffectiveDate is the virtual date set by AdvanceDate, or now's calendar
// day when none is set.
func (s *Service) EffectiveDate(ctx context.Context, now time.Time) (time.Time, error) {
	v, ok, err := s.state.Get(ctx, storage.StateVirtualDate)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return scoring.Day(now), nil
	}
	day, err := scoring.ParseDate(v, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("stored virtual date %q: %w", v, err)
	}
	return scoring.Day(day), nil
}

// ResetDate drops the virtual date so the wall clock applies again.
func (s *Service) ResetDate(ctx context.Context) error {
	return s.state.Delete(ctx, storage.StateVirtualDate)
}

func (s *Service) getTask(ctx context.Context, id string) (*scoring.Task, error) {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t, nil
}

// ResolveID accepts a full task ID or an unambiguous prefix of one.
func (s *Service) ResolveID(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ValidationError{Field: "id", Msg: "is required"}
	}
	all, err := s.tasks.ListAll(ctx)
	if err != nil {
		return "", err
	}
	var match string
	for _, t := range all {
		if t.ID == ref {
			return ref, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", ValidationError{Field: "id", Msg: fmt.Sprintf("%q matches more than one task", ref)}
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	}
	return match, nil
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ValidationError{Field: "title", Msg: "is required"}
	}
	return t, nil
}
