package config

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
)

// Loader caches the validated config for the life of the process.
// Concurrent first loads share one read.
type Loader struct {
	path   string
	logger *slog.Logger
	group  singleflight.Group

	mu  sync.RWMutex
	cfg *scoring.Config
}

func NewLoader(path string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{path: path, logger: logger}
}

func (l *Loader) Path() string { return l.path }

// Get returns the cached config, loading it on first use.
func (l *Loader) Get(ctx context.Context) (*scoring.Config, error) {
	l.mu.RLock()
	cfg := l.cfg
	l.mu.RUnlock()
	if cfg != nil {
		return cfg, nil
	}

	v, err, _ := l.group.Do(l.path, func() (interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l.mu.RLock()
		cached := l.cfg
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}
		cfg, created, err := load(l.path)
		if err != nil {
			return nil, err
		}
		if created {
			l.logger.Info("wrote default scoring config", slog.String("path", l.path))
		}
		l.mu.Lock()
		l.cfg = cfg
		l.mu.Unlock()
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*scoring.Config), nil
}

// Invalidate drops the cached config so the next Get reads the file again.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cfg = nil
	l.mu.Unlock()
}
