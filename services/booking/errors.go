package booking

import (
	"errors"
	"fmt"

	"innkeeper/database"
	"innkeeper/services/interval"
)

// ErrorKind classifies engine failures for callers.
type ErrorKind string

const (
	KindNotFound        ErrorKind = "notFound"
	KindInvalidInterval ErrorKind = "invalidInterval"
	KindInvalidRequest  ErrorKind = "invalidRequest"
	KindConflict        ErrorKind = "conflict"
	KindStorageFailure  ErrorKind = "storageFailure"
)

// Error is the engine's error outcome. Matching with errors.Is compares kinds
// only, so errors.Is(err, booking.ErrConflict) holds for every conflict.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidInterval = &Error{Kind: KindInvalidInterval, Message: "invalid interval"}
	ErrInvalidRequest  = &Error{Kind: KindInvalidRequest, Message: "invalid request"}
	ErrConflict        = &Error{Kind: KindConflict, Message: "conflict"}
	ErrStorageFailure  = &Error{Kind: KindStorageFailure, Message: "storage failure"}
)

func NewError(kind ErrorKind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of err, or "" when err is not an engine error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Classify maps repository and catalog failures onto engine error kinds.
func Classify(msg string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, interval.ErrEmpty):
		return NewError(KindInvalidInterval, msg, err)
	case errors.Is(err, database.ErrNotFound):
		return NewError(KindNotFound, msg, err)
	case errors.Is(err, database.ErrConflict), errors.Is(err, database.ErrAlreadyCancelled):
		return NewError(KindConflict, msg, err)
	default:
		return NewError(KindStorageFailure, msg, err)
	}
}
