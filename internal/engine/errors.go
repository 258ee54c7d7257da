package engine

import (
	"errors"
	"fmt"

	"github.com/warrenleitner/moti-do-sub001/internal/storage"
)

var (
	ErrTaskNotFound      = storage.ErrTaskNotFound
	ErrAlreadyComplete   = errors.New("task is already complete")
	ErrNotCompleted      = errors.New("task has no completion to undo")
	ErrHabitDoneToday    = errors.New("habit already completed today")
	ErrUnknownDependency = errors.New("unknown dependency")
)

// ValidationError rejects user input for a single field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}
