package user

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
	ErrInvalidInput = errors.New("invalid input")
)

const (
	msgAlreadyExists   = "This user already exists!"
	msgInvalidDateForm = "Invalid date of birth format. Please use YYYY-MM-DD format."
)

// Error is returned by Service for every failure the caller is expected to
// show to the user. Kind is one of ErrInvalidInput, ErrNotFound or
// ErrEmailExists, so errors.Is works against the sentinels.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func invalidInput(format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func notFound(id int64) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("User not found with id %d", id)}
}

func alreadyExists() error {
	return &Error{Kind: ErrEmailExists, Message: msgAlreadyExists}
}

// Message returns the user-facing text carried by err, if any.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}
