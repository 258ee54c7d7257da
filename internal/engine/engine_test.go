package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
	"github.com/warrenleitner/moti-do-sub001/internal/storage"
	"github.com/warrenleitner/moti-do-sub001/internal/xp"
)

var now = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return scoring.Day(now).AddDate(0, 0, n)
}

// quietConfig scores an unadorned task at exactly base_score.
func quietConfig() *scoring.Config {
	cfg := scoring.DefaultConfig()
	cfg.FieldPresenceBonus = map[string]float64{}
	cfg.AgeFactor.MultiplierPerUnit = 0
	cfg.DueDateProximity.Enabled = false
	cfg.StartDateAging.Enabled = false
	cfg.DailyPenalty.ApplyPenalty = false
	return cfg
}

func newTestService(t *testing.T, cfg *scoring.Config) *Service {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	db, err := storage.Open(ctx, filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cp := storage.NewFileCheckpoint(filepath.Join(dir, storage.DefaultCheckpointFile))
	cp.Location = time.UTC
	return NewService(db, StaticConfig{Config: cfg}, cp, nil)
}

func mustCreate(t *testing.T, svc *Service, in CreateTaskInput) *scoring.Task {
	t.Helper()
	if in.CreationDate.IsZero() {
		in.CreationDate = day(0)
	}
	task, err := svc.CreateTask(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateTask %q: %v", in.Title, err)
	}
	return task
}

func totalXP(t *testing.T, svc *Service) int {
	t.Helper()
	u, err := svc.User(context.Background())
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	return u.TotalXP()
}

func TestCreateTaskValidation(t *testing.T) {
	svc := newTestService(t, quietConfig())
	ctx := context.Background()

	var verr ValidationError
	if _, err := svc.CreateTask(ctx, CreateTaskInput{Title: "   "}); !errors.As(err, &verr) || verr.Field != "title" {
		t.Fatalf("blank title err=%v", err)
	}
	if _, err := svc.CreateTask(ctx, CreateTaskInput{Title: "x", Priority: "URGENT"}); !errors.As(err, &verr) || verr.Field != "priority" {
		t.Fatalf("bad priority err=%v", err)
	}
	if _, err := svc.CreateTask(ctx, CreateTaskInput{Title: "x", Recurrence: scoring.RecurrenceWeekly}); !errors.As(err, &verr) || verr.Field != "recurrence" {
		t.Fatalf("recurring non-habit err=%v", err)
	}
	if _, err := svc.CreateTask(ctx, CreateTaskInput{Title: "x", Dependencies: []string{"ghost"}}); !errors.Is(err, ErrUnknownDependency) {
		t.Fatalf("unknown dependency err=%v", err)
	}

	habit := mustCreate(t, svc, CreateTaskInput{Title: "Stretch", IsHabit: true, Tags: []string{"health", " health ", ""}})
	if habit.Recurrence != scoring.RecurrenceDaily {
		t.Fatalf("habit recurrence=%q, want daily", habit.Recurrence)
	}
	if len(habit.Tags) != 1 || habit.Tags[0] != "health" {
		t.Fatalf("tags=%v", habit.Tags)
	}
}

func TestUpdateTaskRejectsCycles(t *testing.T) {
	svc := newTestService(t, quietConfig())
	ctx := context.Background()

	a := mustCreate(t, svc, CreateTaskInput{Title: "a"})
	b := mustCreate(t, svc, CreateTaskInput{Title: "b", Dependencies: []string{a.ID}})

	deps := []string{b.ID}
	if _, err := svc.UpdateTask(ctx, a.ID, TaskPatch{Dependencies: &deps}); !scoring.IsCircularDependency(err) {
		t.Fatalf("mutual dependency err=%v", err)
	}
	self := []string{a.ID}
	if _, err := svc.UpdateTask(ctx, a.ID, TaskPatch{Dependencies: &self}); !scoring.IsCircularDependency(err) {
		t.Fatalf("self dependency err=%v", err)
	}

	title := "a renamed"
	hard := scoring.DifficultyHigh
	due := day(3)
	got, err := svc.UpdateTask(ctx, a.ID, TaskPatch{Title: &title, Difficulty: &hard, DueDate: &due})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if got.Title != title || got.Difficulty != hard || got.DueDate == nil {
		t.Fatalf("UpdateTask = %+v", got)
	}

	stored, err := svc.TaskRepo().Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Title != title || !stored.DueDate.Equal(due) {
		t.Fatalf("stored = %+v", stored)
	}

	got, err = svc.UpdateTask(ctx, a.ID, TaskPatch{ClearDue: true})
	if err != nil || got.DueDate != nil {
		t.Fatalf("ClearDue = %+v, %v", got, err)
	}
}

func TestCompleteAndRestoreTask(t *testing.T) {
	svc := newTestService(t, quietConfig())
	ctx := context.Background()

	task := mustCreate(t, svc, CreateTaskInput{Title: "Tidy desk"})

	res, err := svc.CompleteTask(ctx, task.ID, day(0))
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if res.XPAwarded != 10 || res.TotalXP != 10 {
		t.Fatalf("CompleteTask = %+v", res)
	}
	stored, _ := svc.TaskRepo().Get(ctx, task.ID)
	if !stored.IsComplete || stored.CompletionDate == nil {
		t.Fatalf("task not marked complete: %+v", stored)
	}

	if _, err := svc.CompleteTask(ctx, task.ID, day(0)); !errors.Is(err, ErrAlreadyComplete) {
		t.Fatalf("second complete err=%v", err)
	}

	undo, err := svc.RestoreTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("RestoreTask: %v", err)
	}
	if undo.XPRemoved != 10 || undo.TotalXP != 0 {
		t.Fatalf("RestoreTask = %+v", undo)
	}
	stored, _ = svc.TaskRepo().Get(ctx, task.ID)
	if stored.IsComplete {
		t.Fatalf("task still complete after restore")
	}
	if _, err := svc.RestoreTask(ctx, task.ID); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("second restore err=%v", err)
	}
	if _, err := svc.CompleteTask(ctx, "missing", day(0)); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("missing task err=%v", err)
	}
}

func TestCompleteIncludesDependencyBonus(t *testing.T) {
	svc := newTestService(t, quietConfig())
	ctx := context.Background()

	a := mustCreate(t, svc, CreateTaskInput{Title: "Buy paint"})
	mustCreate(t, svc, CreateTaskInput{Title: "Paint fence", Dependencies: []string{a.ID}})

	res, err := svc.CompleteTask(ctx, a.ID, day(0))
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	// 10 + 0.1 * 10
	if res.XPAwarded != 11 {
		t.Fatalf("xp=%d, want 11", res.XPAwarded)
	}
}

func TestHabitStreaks(t *testing.T) {
	svc := newTestService(t, quietConfig())
	ctx := context.Background()

	h := mustCreate(t, svc, CreateTaskInput{Title: "Push-ups", IsHabit: true})

	steps := []struct {
		day    int
		xp     int
		streak int
	}{
		{0, 10, 1},
		{1, 11, 2},
		{3, 12, 1},
	}
	for _, st := range steps {
		res, err := svc.CompleteTask(ctx, h.ID, day(st.day))
		if err != nil {
			t.Fatalf("complete on day %d: %v", st.day, err)
		}
		if res.XPAwarded != st.xp || res.Streak != st.streak {
			t.Fatalf("day %d: xp=%d streak=%d, want %d/%d", st.day, res.XPAwarded, res.Streak, st.xp, st.streak)
		}
		if res.NextDue == nil || !res.NextDue.Equal(day(st.day+1)) {
			t.Fatalf("day %d: next due %v", st.day, res.NextDue)
		}
	}

	if _, err := svc.CompleteTask(ctx, h.ID, day(3)); !errors.Is(err, ErrHabitDoneToday) {
		t.Fatalf("same-day completion err=%v", err)
	}

	stored, _ := svc.TaskRepo().Get(ctx, h.ID)
	if stored.IsComplete || stored.CurrentStreak != 1 || stored.BestStreak != 2 {
		t.Fatalf("habit after completions: %+v", stored)
	}

	if _, err := svc.RestoreTask(ctx, h.ID); err != nil {
		t.Fatalf("RestoreTask: %v", err)
	}
	stored, _ = svc.TaskRepo().Get(ctx, h.ID)
	if stored.CurrentStreak != 2 || stored.CompletionDate == nil || !stored.CompletionDate.Equal(day(1)) {
		t.Fatalf("habit after restore: %+v", stored)
	}
	if got := totalXP(t, svc); got != 21 {
		t.Fatalf("total xp=%d, want 21", got)
	}
}

func TestPenaltiesAndAdvanceDate(t *testing.T) {
	cfg := quietConfig()
	cfg.DailyPenalty = scoring.DailyPenalty{ApplyPenalty: true, PenaltyPoints: 5}
	svc := newTestService(t, cfg)
	ctx := context.Background()

	mustCreate(t, svc, CreateTaskInput{Title: "Taxes", CreationDate: day(-5)})

	res, err := svc.ApplyPenalties(ctx, day(0))
	if err != nil {
		t.Fatalf("ApplyPenalties: %v", err)
	}
	if res.Deductions != 0 || !res.CheckpointWritten {
		t.Fatalf("first run = %+v", res)
	}

	next, res, err := svc.AdvanceDate(ctx, now, 2)
	if err != nil {
		t.Fatalf("AdvanceDate: %v", err)
	}
	if !next.Equal(day(2)) || res.Deductions != 2 {
		t.Fatalf("AdvanceDate = %v, %+v", next, res)
	}
	if got := totalXP(t, svc); got != -10 {
		t.Fatalf("total xp=%d, want -10", got)
	}

	eff, err := svc.EffectiveDate(ctx, now)
	if err != nil || !eff.Equal(day(2)) {
		t.Fatalf("EffectiveDate = %v, %v", eff, err)
	}

	res, err = svc.ApplyPenalties(ctx, eff)
	if err != nil || res.Deductions != 0 {
		t.Fatalf("repeat ApplyPenalties = %+v, %v", res, err)
	}

	if _, _, err := svc.AdvanceDate(ctx, now, 0); err == nil {
		t.Fatalf("AdvanceDate(0) should fail")
	}
	if err := svc.ResetDate(ctx); err != nil {
		t.Fatalf("ResetDate: %v", err)
	}
	eff, _ = svc.EffectiveDate(ctx, now)
	if !eff.Equal(day(0)) {
		t.Fatalf("EffectiveDate after reset = %v", eff)
	}
}

func TestPenaltyRunRollsBackOnLedgerFailure(t *testing.T) {
	cfg := quietConfig()
	cfg.DailyPenalty = scoring.DailyPenalty{ApplyPenalty: true, PenaltyPoints: 5}
	svc := newTestService(t, cfg)
	ctx := context.Background()

	mustCreate(t, svc, CreateTaskInput{Title: "Dishes", CreationDate: day(-5)})
	mustCreate(t, svc, CreateTaskInput{Title: "Laundry", CreationDate: day(-5)})
	if _, err := svc.ApplyPenalties(ctx, day(0)); err != nil {
		t.Fatalf("first ApplyPenalties: %v", err)
	}

	calls := 0
	svc.penaltySaver = func(r repos) xp.UserSaver {
		return xp.UserSaverFunc(func(ctx context.Context, u *xp.User) error {
			calls++
			if calls == 3 {
				return errors.New("disk full")
			}
			return r.users.SaveUser(ctx, u)
		})
	}
	if _, err := svc.ApplyPenalties(ctx, day(2)); err == nil {
		t.Fatalf("ApplyPenalties with failing ledger should fail")
	}
	if got := totalXP(t, svc); got != 0 {
		t.Fatalf("total xp after failed run=%d, want 0", got)
	}

	svc.penaltySaver = func(r repos) xp.UserSaver { return r.users }
	res, err := svc.ApplyPenalties(ctx, day(2))
	if err != nil || res.Deductions != 4 || res.PointsDeducted != 20 {
		t.Fatalf("retry = %+v, %v", res, err)
	}
	if got := totalXP(t, svc); got != -20 {
		t.Fatalf("total xp after retry=%d, want -20", got)
	}

	res, err = svc.ApplyPenalties(ctx, day(2))
	if err != nil || res.Deductions != 0 {
		t.Fatalf("repeat = %+v, %v", res, err)
	}
	if got := totalXP(t, svc); got != -20 {
		t.Fatalf("total xp after repeat=%d, want -20", got)
	}
}

func TestHabitRestoredToZeroStreakCannotRepeatSameDay(t *testing.T) {
	svc := newTestService(t, quietConfig())
	ctx := context.Background()

	h := mustCreate(t, svc, CreateTaskInput{Title: "Meditate", IsHabit: true})
	if _, err := svc.CompleteTask(ctx, h.ID, day(0)); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	stored, _ := svc.TaskRepo().Get(ctx, h.ID)
	stored.CurrentStreak = 0
	if err := svc.TaskRepo().Update(ctx, stored); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, err := svc.CompleteTask(ctx, h.ID, day(0)); !errors.Is(err, ErrHabitDoneToday) {
		t.Fatalf("second completion today err=%v, want ErrHabitDoneToday", err)
	}
	res, err := svc.CompleteTask(ctx, h.ID, day(1))
	if err != nil || res.Streak != 1 {
		t.Fatalf("next day = %+v, %v", res, err)
	}
}

func TestScoresAndStatus(t *testing.T) {
	cfg := quietConfig()
	cfg.DailyPenalty = scoring.DailyPenalty{ApplyPenalty: true, PenaltyPoints: 2}
	svc := newTestService(t, cfg)
	ctx := context.Background()

	low := mustCreate(t, svc, CreateTaskInput{Title: "Low", Priority: scoring.PriorityLow})
	high := mustCreate(t, svc, CreateTaskInput{Title: "High", Priority: scoring.PriorityHigh})
	late := day(-1)
	mustCreate(t, svc, CreateTaskInput{Title: "Late", DueDate: &late, IsHabit: true})
	done := mustCreate(t, svc, CreateTaskInput{Title: "Done"})
	if _, err := svc.CompleteTask(ctx, done.ID, day(0)); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	ranked, err := svc.Scores(ctx, day(0))
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if len(ranked) != 3 || ranked[0].Task.ID != high.ID || ranked[0].Breakdown.XP != 20 {
		t.Fatalf("Scores = %+v", ranked)
	}

	task, b, err := svc.Breakdown(ctx, low.ID, day(0))
	if err != nil || task.ID != low.ID || b.XP != 12 {
		t.Fatalf("Breakdown = %+v, %+v, %v", task, b, err)
	}
	if _, _, err := svc.Breakdown(ctx, "ghost", day(0)); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("Breakdown ghost err=%v", err)
	}

	st, err := svc.Status(ctx, day(0))
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.OpenTasks != 3 || st.OverdueTasks != 1 || st.Habits != 1 || st.DailyPenalty != 6 || st.TotalXP != 10 {
		t.Fatalf("Status = %+v", st)
	}
}

func TestDeleteTaskDropsDependencies(t *testing.T) {
	svc := newTestService(t, quietConfig())
	ctx := context.Background()

	a := mustCreate(t, svc, CreateTaskInput{Title: "a"})
	b := mustCreate(t, svc, CreateTaskInput{Title: "b", Dependencies: []string{a.ID}})

	if err := svc.DeleteTask(ctx, a.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	got, _ := svc.TaskRepo().Get(ctx, b.ID)
	if len(got.Dependencies) != 0 {
		t.Fatalf("dependencies=%v, want none", got.Dependencies)
	}
	if err := svc.DeleteTask(ctx, a.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("second delete err=%v", err)
	}
}

func TestResolveID(t *testing.T) {
	svc := newTestService(t, quietConfig())
	ctx := context.Background()
	task := mustCreate(t, svc, CreateTaskInput{Title: "a"})

	got, err := svc.ResolveID(ctx, task.ID[:8])
	if err != nil || got != task.ID {
		t.Fatalf("ResolveID prefix = %q, %v", got, err)
	}
	if _, err := svc.ResolveID(ctx, "zzzz-not-there"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("ResolveID missing err=%v", err)
	}
}
