package warn

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned before any store access when a request is malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPersistence means the store could not complete the operation. A warn that
	// failed with this error was not registered.
	ErrPersistence = errors.New("persistence error")
	// ErrPunishmentExecution means the platform rejected a punishment for a warn
	// that is already persisted.
	ErrPunishmentExecution = errors.New("punishment execution error")
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// PunishmentError describes a punishment that could not be applied.
type PunishmentError struct {
	SubjectID string
	Count     int
	Action    PunishmentAction
	Err       error
}

func (e *PunishmentError) Error() string {
	return fmt.Sprintf("%s: %s for subject %s (warn %d): %v",
		ErrPunishmentExecution, e.Action, e.SubjectID, e.Count, e.Err)
}

func (e *PunishmentError) Unwrap() []error {
	return []error{ErrPunishmentExecution, e.Err}
}
