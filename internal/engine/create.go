package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
)

type CreateTaskInput struct {
	Title        string
	Description  string
	CreationDate time.Time
	StartDate    *time.Time
	DueDate      *time.Time
	Priority     scoring.Priority
	Difficulty   scoring.Difficulty
	Duration     scoring.Duration
	Tags         []string
	Project      string
	Dependencies []string
	IsHabit      bool
	Recurrence   scoring.Recurrence
}

// CreateTask validates and stores a new task. Dependencies must name
// existing tasks. A habit without a recurrence repeats daily.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (*scoring.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if err := validateLevels(in.Priority, in.Difficulty, in.Duration); err != nil {
		return nil, err
	}
	recurrence, err := habitRecurrence(in.IsHabit, in.Recurrence)
	if err != nil {
		return nil, err
	}

	all, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	deps := cleanList(in.Dependencies)
	if err := checkDependencies(all, "", deps); err != nil {
		return nil, err
	}

	t := &scoring.Task{
		Title:           title,
		TextDescription: strings.TrimSpace(in.Description),
		CreationDate:    in.CreationDate,
		StartDate:       in.StartDate,
		DueDate:         in.DueDate,
		Priority:        in.Priority,
		Difficulty:      in.Difficulty,
		Duration:        in.Duration,
		Tags:            cleanList(in.Tags),
		Project:         strings.TrimSpace(in.Project),
		Dependencies:    deps,
		IsHabit:         in.IsHabit,
		Recurrence:      recurrence,
	}
	if _, err := s.tasks.Insert(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Debug("task created", slog.String("id", t.ID), slog.String("title", t.Title))
	return t, nil
}

// DeleteTask removes a task and drops it from other tasks' dependencies.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.getTask(ctx, id); err != nil {
		return err
	}
	all, err := s.tasks.ListAll(ctx)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(r repos) error {
		for i := range all {
			t := &all[i]
			if t.ID == id || !t.DependsOn(id) {
				continue
			}
			t.Dependencies = without(t.Dependencies, id)
			if err := r.tasks.Update(ctx, t); err != nil {
				return err
			}
		}
		return r.tasks.Delete(ctx, id)
	})
}

func validateLevels(p scoring.Priority, d scoring.Difficulty, du scoring.Duration) error {
	if !p.IsValid() {
		return ValidationError{Field: "priority", Msg: fmt.Sprintf("%q", string(p))}
	}
	if !d.IsValid() {
		return ValidationError{Field: "difficulty", Msg: fmt.Sprintf("%q", string(d))}
	}
	if !du.IsValid() {
		return ValidationError{Field: "duration", Msg: fmt.Sprintf("%q", string(du))}
	}
	return nil
}

func habitRecurrence(isHabit bool, r scoring.Recurrence) (scoring.Recurrence, error) {
	if !r.IsValid() {
		return "", ValidationError{Field: "recurrence", Msg: fmt.Sprintf("%q", string(r))}
	}
	if !isHabit {
		if r != scoring.RecurrenceNone {
			return "", ValidationError{Field: "recurrence", Msg: "only habits recur"}
		}
		return r, nil
	}
	if r == scoring.RecurrenceNone {
		return scoring.RecurrenceDaily, nil
	}
	return r, nil
}

// checkDependencies requires every dependency to exist and rejects a set that
// would close a cycle through task id.
func checkDependencies(all []scoring.Task, id string, deps []string) error {
	known := make(map[string]bool, len(all))
	for _, t := range all {
		known[t.ID] = true
	}
	for _, dep := range deps {
		if dep == id {
			return &scoring.CircularDependencyError{Cycle: []string{id, id}}
		}
		if !known[dep] {
			return fmt.Errorf("%w: %s", ErrUnknownDependency, dep)
		}
	}
	if id == "" {
		return nil
	}
	g, err := scoring.NewGraph(all)
	if err != nil {
		return err
	}
	return g.WouldCycle(id, deps)
}

// cleanList trims entries and drops blanks and repeats.
func cleanList(in []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func without(list []string, drop string) []string {
	var out []string
	for _, v := range list {
		if v != drop {
			out = append(out, v)
		}
	}
	return out
}
