package root

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warrenleitner/moti-do-sub001/internal/lock"
	"github.com/warrenleitner/moti-do-sub001/internal/storage"
)

type cliEnv struct {
	db, config, checkpoint string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()
	return cliEnv{
		db:         filepath.Join(dir, "motido.db"),
		config:     filepath.Join(dir, "scoring_config.json"),
		checkpoint: filepath.Join(dir, "last_penalty_check.txt"),
	}
}

func (e cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append(args, "--db", e.db, "--config", e.config, "--checkpoint", e.checkpoint))
	err := rootCmd.Execute()
	return buf.String(), err
}

func (e cliEnv) onlyTaskID(t *testing.T) string {
	t.Helper()
	db, err := storage.Open(context.Background(), e.db)
	require.NoError(t, err)
	defer db.Close()
	tasks, err := storage.NewTaskRepo(db).ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	return tasks[0].ID
}

func TestCLITaskLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "add", "Write", "report", "-p", "high")
	require.NoError(t, err)
	assert.Contains(t, out, "Added")
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "20")

	out, err = env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Write report")

	id := env.onlyTaskID(t)

	out, err = env.run(t, "edit", id[:8], "--title", "Write the report")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated")

	out, err = env.run(t, "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Write the report")
	assert.Contains(t, out, "HIGH")

	out, err = env.run(t, "do", id)
	require.NoError(t, err)
	assert.Contains(t, out, "+20 XP")

	_, err = env.run(t, "do", id)
	require.Error(t, err)

	out, err = env.run(t, "undo", id)
	require.NoError(t, err)
	assert.Contains(t, out, "-20 XP")

	out, err = env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Open:")
	assert.Contains(t, out, "Level:")
}

func TestCLIAdvanceAppliesPenalties(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "add", "Stretch")
	require.NoError(t, err)
	// First catch-up only records the checkpoint.
	_, err = env.run(t, "status")
	require.NoError(t, err)

	out, err := env.run(t, "advance", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Date is now")
	assert.Contains(t, out, "-10 XP")

	out, err = env.run(t, "advance", "--reset")
	require.NoError(t, err)
	assert.Contains(t, out, "wall clock")

	_, err = env.run(t, "advance", "soon")
	require.Error(t, err)
}

func TestCLIAdvanceWaitsForPenaltyLock(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "add", "Stretch")
	require.NoError(t, err)

	held := lock.NewFileLock(lockPath(env.db))
	require.NoError(t, held.Lock())

	done := make(chan error, 1)
	go func() {
		_, err := env.run(t, "advance", "1", "--reset=false")
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("advance finished while another process held the lock: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, held.Unlock())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("advance did not finish after the lock was released")
	}
}

func TestCLIConfigCommands(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, env.config+"\n", out)

	out, err = env.run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	_, err = env.run(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, err = env.run(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}

func TestCLIRejectsBadInput(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "add")
	assert.Error(t, err)

	_, err = env.run(t, "add", "Thing", "--due", "next week")
	assert.Error(t, err)

	_, err = env.run(t, "do", "nope")
	assert.Error(t, err)
}
