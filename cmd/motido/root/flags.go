package root

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/warrenleitner/moti-do-sub001/internal/engine"
	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
)

// taskFlags are the task fields shared by add and edit.
type taskFlags struct {
	desc       string
	start      string
	due        string
	priority   string
	difficulty string
	duration   string
	tags       []string
	project    string
	deps       []string
	habit      bool
	recurrence string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.desc, "desc", "", "Longer description")
	fl.StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD)")
	fl.StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD)")
	fl.StringVarP(&f.priority, "priority", "p", "", "Priority (trivial|low|medium|high|defcon_one)")
	fl.StringVarP(&f.difficulty, "difficulty", "d", "", "Difficulty (trivial|low|medium|high|herculean)")
	fl.StringVar(&f.duration, "duration", "", "Duration (minuscule|short|medium|long|odysseyan)")
	fl.StringSliceVarP(&f.tags, "tag", "t", nil, "Tag (repeatable)")
	fl.StringVar(&f.project, "project", "", "Project name")
	fl.StringSliceVar(&f.deps, "dep", nil, "ID (or prefix) of a task this one depends on (repeatable)")
	fl.BoolVar(&f.habit, "habit", false, "Make this a recurring habit")
	fl.StringVar(&f.recurrence, "recurrence", "", "Habit recurrence (daily|weekly|monthly)")
}

func parseDateFlag(name, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	d, err := scoring.ParseDate(value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &d, nil
}

func resolveIDs(ctx context.Context, svc *engine.Service, refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := svc.ResolveID(ctx, ref)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (f *taskFlags) input(ctx context.Context, svc *engine.Service, title string) (engine.CreateTaskInput, error) {
	in := engine.CreateTaskInput{
		Title:       title,
		Description: f.desc,
		Tags:        f.tags,
		Project:     f.project,
		IsHabit:     f.habit,
	}
	var err error
	if in.StartDate, err = parseDateFlag("start", f.start); err != nil {
		return in, err
	}
	if in.DueDate, err = parseDateFlag("due", f.due); err != nil {
		return in, err
	}
	if in.Priority, err = scoring.ParsePriority(f.priority); err != nil {
		return in, err
	}
	if in.Difficulty, err = scoring.ParseDifficulty(f.difficulty); err != nil {
		return in, err
	}
	if in.Duration, err = scoring.ParseDuration(f.duration); err != nil {
		return in, err
	}
	if in.Recurrence, err = scoring.ParseRecurrence(f.recurrence); err != nil {
		return in, err
	}
	if in.Dependencies, err = resolveIDs(ctx, svc, f.deps); err != nil {
		return in, err
	}
	return in, nil
}

// patch builds a TaskPatch from the flags the user actually set.
func (f *taskFlags) patch(ctx context.Context, cmd *cobra.Command, svc *engine.Service) (engine.TaskPatch, error) {
	var p engine.TaskPatch
	changed := cmd.Flags().Changed

	if changed("desc") {
		p.Description = &f.desc
	}
	if changed("start") {
		d, err := parseDateFlag("start", f.start)
		if err != nil {
			return p, err
		}
		p.StartDate = d
		p.ClearStart = d == nil
	}
	if changed("due") {
		d, err := parseDateFlag("due", f.due)
		if err != nil {
			return p, err
		}
		p.DueDate = d
		p.ClearDue = d == nil
	}
	if changed("priority") {
		v, err := scoring.ParsePriority(f.priority)
		if err != nil {
			return p, err
		}
		p.Priority = &v
	}
	if changed("difficulty") {
		v, err := scoring.ParseDifficulty(f.difficulty)
		if err != nil {
			return p, err
		}
		p.Difficulty = &v
	}
	if changed("duration") {
		v, err := scoring.ParseDuration(f.duration)
		if err != nil {
			return p, err
		}
		p.Duration = &v
	}
	if changed("tag") {
		p.Tags = &f.tags
	}
	if changed("project") {
		p.Project = &f.project
	}
	if changed("dep") {
		ids, err := resolveIDs(ctx, svc, f.deps)
		if err != nil {
			return p, err
		}
		p.Dependencies = &ids
	}
	if changed("habit") {
		p.IsHabit = &f.habit
	}
	if changed("recurrence") {
		v, err := scoring.ParseRecurrence(f.recurrence)
		if err != nil {
			return p, err
		}
		p.Recurrence = &v
	}
	return p, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
