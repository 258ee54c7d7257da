package scoring

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig is matched by every ConfigError.
	ErrInvalidConfig = errors.New("invalid scoring configuration")

	ErrDuplicateTaskID = errors.New("duplicate task id")
)

// ConfigError names the exact key path that failed validation.
type ConfigError struct {
	Key string
	Msg string
}

func (e ConfigError) Error() string {
	return e.Msg
}

func (e ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func missingKey(key string) ConfigError {
	return ConfigError{Key: key, Msg: fmt.Sprintf("missing required key '%s'", key)}
}

func badValue(key, want string) ConfigError {
	return ConfigError{Key: key, Msg: fmt.Sprintf("'%s' must be %s", key, want)}
}

// CircularDependencyError is returned when the dependency graph of a scored
// collection contains a cycle. Cycle lists task IDs with the first repeated
// at the end.
type CircularDependencyError struct {
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	if len(e.Cycle) == 0 {
		return "circular dependency detected"
	}
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Cycle, " -> "))
}

// IsCircularDependency reports whether err carries a CircularDependencyError.
func IsCircularDependency(err error) bool {
	var ce *CircularDependencyError
	return errors.As(err, &ce)
}
