// Package config loads, creates and watches the scoring configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/warrenleitner/moti-do-sub001/internal/fsutil"
	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
)

const (
	EnvPath     = "MOTIDO_CONFIG"
	DefaultFile = "scoring_config.json"
)

var (
	// ErrCannotRead wraps any I/O failure reading or writing the file.
	ErrCannotRead = errors.New("cannot read scoring config")

	// ErrInvalidFormat means the file is not a JSON or YAML object.
	ErrInvalidFormat = errors.New("scoring config is not a valid document")
)

// DefaultPath returns $MOTIDO_CONFIG, or ~/.motido/scoring_config.json.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".motido", DefaultFile), nil
}

// Load reads and validates the config at path. A missing file is replaced
// by the built-in default, which is written there and returned.
func Load(path string) (*scoring.Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (cfg *scoring.Config, created bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = scoring.DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return nil, false, err
		}
		return cfg, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCannotRead, err)
	}

	raw, err := Decode(path, data)
	if err != nil {
		return nil, false, err
	}
	cfg, err = scoring.ParseConfig(raw)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, false, nil
}

// Decode parses data as YAML when path has a .yaml or .yml extension and as
// JSON otherwise. The top level must be an object.
func Decode(path string, data []byte) (map[string]any, error) {
	var doc any
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	} else {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	}

	switch m := doc.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidFormat)
	}
}

// Encode renders cfg in the format implied by path.
func Encode(path string, cfg *scoring.Config) ([]byte, error) {
	if isYAML(path) {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("yaml marshal: %w", err)
		}
		return out, nil
	}
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return append(out, '\n'), nil
}

// Save validates cfg and writes it atomically, keeping a .bak of any file it
// replaces.
func Save(path string, cfg *scoring.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := Encode(path, cfg)
	if err != nil {
		return err
	}
	if err := fsutil.ReplaceWithBackup(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrCannotRead, err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
