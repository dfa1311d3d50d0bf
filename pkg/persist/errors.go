package persist

import (
	"errors"
	"fmt"
)

// Kind classifies a persistence failure for recovery and reporting logic.
type Kind string

const (
	// KindCorruption indicates structurally invalid data read from (or
	// about to be written to) storage.
	KindCorruption Kind = "corruption"

	// KindStorage indicates the storage backend itself failed (I/O,
	// quota exhaustion).
	KindStorage Kind = "storage"
)

// Error is a classified persistence failure with context. Callers can
// pattern-match on the kind via IsCorruption/IsStorage or errors.As.
type Error struct {
	// Kind is the failure classification.
	Kind Kind `json:"kind"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// ActorID is the actor whose snapshot was involved, if applicable.
	ActorID string `json:"actor_id,omitempty"`

	// Operation is the guard operation being performed (save, load,
	// clear, clear_all).
	Operation string `json:"operation,omitempty"`

	// Err is the underlying cause.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.ActorID != "" {
		msg += fmt.Sprintf(" (actor=%s", e.ActorID)
		if e.Operation != "" {
			msg += fmt.Sprintf(", operation=%s", e.Operation)
		}
		msg += ")"
	} else if e.Operation != "" {
		msg += fmt.Sprintf(" (operation=%s)", e.Operation)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewCorruptionError creates a corruption error for the given actor.
func NewCorruptionError(actorID, message string, err error) *Error {
	return &Error{
		Kind:    KindCorruption,
		Message: message,
		ActorID: actorID,
		Err:     err,
	}
}

// NewStorageError creates a storage error for the given operation.
func NewStorageError(operation, actorID string, err error) *Error {
	return &Error{
		Kind:      KindStorage,
		Message:   "storage backend failed",
		ActorID:   actorID,
		Operation: operation,
		Err:       err,
	}
}

// WithOperation adds operation context to an error.
func (e *Error) WithOperation(operation string) *Error {
	e.Operation = operation
	return e
}

// IsCorruption returns true if the error is classified as corruption.
func IsCorruption(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindCorruption
	}
	return false
}

// IsStorage returns true if the error is classified as a storage failure.
func IsStorage(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindStorage
	}
	return false
}

// ErrNotFound is returned by Load when no snapshot is persisted for the
// requested actor id.
var ErrNotFound = errors.New("no persisted snapshot")
