package service

import "errors"

// ErrorKind tells callers whether an error is worth retrying: validation and
// not-found are terminal, conflicts mean "reload and try again".
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindConflict
	KindNotFound
)

type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

var (
	ErrInvalidSplitTarget = &Error{KindValidation, "invalid split target"}
	ErrMissingIdentifier  = &Error{KindValidation, "order number or account descriptor required"}
	ErrNoImages           = &Error{KindValidation, "at least one image is required"}
	ErrNotPending         = &Error{KindValidation, "image is not pending approval"}
	ErrNotInTrash         = &Error{KindValidation, "entity is not in trash"}
	ErrUnknownEntityType  = &Error{KindValidation, "unknown entity type"}

	ErrDuplicateAssignment    = &Error{KindConflict, "operator already assigned to this day group"}
	ErrNotAssigned            = &Error{KindConflict, "operator is not assigned to this day group"}
	ErrConcurrentReassignment = &Error{KindConflict, "assignment changed concurrently, reload and retry"}

	ErrNotFound     = &Error{KindNotFound, "entity not found"}
	ErrUnknownToken = &Error{KindNotFound, "unknown upload token"}
)

// KindOf reports the category of err, or ok=false for untyped errors.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
