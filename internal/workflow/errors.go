package workflow

import (
	"errors"
	"fmt"

	"shootflow-backend/internal/models"
)

// ErrForbidden means the requested edge exists but the actor's role or
// ownership fails the check. Surfaced as-is, never retried.
var ErrForbidden = errors.New("forbidden")

// ErrAlreadyReviewed means a reschedule request is no longer pending.
var ErrAlreadyReviewed = errors.New("reschedule request already reviewed")

// ErrPhotographerUnavailable means scheduling failed domain validation; the
// caller must pick a new time or photographer.
var ErrPhotographerUnavailable = errors.New("photographer not available at the requested time")

// TransitionError reports a shoot action with no edge from the current state.
// Role is checked only after the edge is confirmed to exist, so a
// TransitionError never masks a Forbidden.
type TransitionError struct {
	From   models.Status
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a shoot in status %s", e.Action, e.From)
}

// StageError is the media-file equivalent of TransitionError.
type StageError struct {
	From models.Stage
	Op   string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("cannot %s a file in stage %s", e.Op, e.From)
}

// ValidationError reports malformed input, e.g. missing required notes on a
// reject.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// StorageError wraps a storage-collaborator failure. The triggering stage or
// status write is rolled back, so the caller may retry the whole operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
