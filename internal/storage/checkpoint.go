package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warrenleitner/moti-do-sub001/internal/fsutil"
	"github.com/warrenleitner/moti-do-sub001/internal/penalty"
	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
)

const (
	EnvCheckpointPath     = "MOTIDO_CHECKPOINT"
	DefaultCheckpointFile = "last_penalty_check.txt"
)

// DefaultCheckpointPath returns $MOTIDO_CHECKPOINT, or
// ~/.motido/last_penalty_check.txt.
func DefaultCheckpointPath() (string, error) {
	if p := os.Getenv(EnvCheckpointPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".motido", DefaultCheckpointFile), nil
}

// FileCheckpoint stores the penalty checkpoint as a single ISO-8601 date in
// a text file. It implements penalty.CheckpointStore.
type FileCheckpoint struct {
	Path     string
	Location *time.Location
}

func NewFileCheckpoint(path string) *FileCheckpoint {
	return &FileCheckpoint{Path: path, Location: time.Local}
}

func (f *FileCheckpoint) Load(_ context.Context) (time.Time, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, penalty.ErrNoCheckpoint
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read checkpoint: %w", err)
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return time.Time{}, penalty.ErrNoCheckpoint
	}
	day, err := scoring.ParseDate(s, f.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", penalty.ErrMalformedCheckpoint, s)
	}
	return scoring.Day(day), nil
}

func (f *FileCheckpoint) Save(_ context.Context, day time.Time) error {
	if err := fsutil.WriteFileAtomic(f.Path, []byte(scoring.FormatDate(day)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}
