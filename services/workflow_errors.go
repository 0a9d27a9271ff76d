package services

import (
	"errors"
	"fmt"

	"github.com/g-rown/UAct-BackEnd/model"
)

// Workflow error taxonomy. All of these are recoverable, user-facing
// conditions; handlers map them to 4xx responses with machine codes.
var (
	// ErrDuplicateApplication is returned when a student already holds an
	// application for the program.
	ErrDuplicateApplication = errors.New("student has already applied for this program")

	// ErrProgramFull is returned when every seat of the program has been
	// reserved, either at the submission gate or by the guarded seat
	// reservation at approval time.
	ErrProgramFull = errors.New("program has no remaining slots")

	// ErrAlreadyDecided is the sentinel wrapped by AlreadyDecidedError.
	ErrAlreadyDecided = errors.New("application has already been decided")

	// ErrAlreadyApproved is returned when a service log's hours were
	// already accredited.
	ErrAlreadyApproved = errors.New("service log has already been approved")

	// ErrNotFound is returned for missing entities.
	ErrNotFound = errors.New("record not found")
)

// AlreadyDecidedError reports the decision that already stands on an
// application. It unwraps to ErrAlreadyDecided.
type AlreadyDecidedError struct {
	Status model.DecisionStatus
}

func (e *AlreadyDecidedError) Error() string {
	return fmt.Sprintf("application has already been %s", e.Status)
}

func (e *AlreadyDecidedError) Unwrap() error {
	return ErrAlreadyDecided
}
