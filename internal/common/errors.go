// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Image errors.
	ErrUnreadableImage = errors.New("unreadable image")
	ErrStaleLoad       = errors.New("image load superseded by a newer load")

	// Precondition errors. ErrNoImage and ErrNoCrop wrap ErrNotReady.
	ErrNotReady       = errors.New("not ready")
	ErrNoImage        = fmt.Errorf("%w: no image loaded", ErrNotReady)
	ErrNoCrop         = fmt.Errorf("%w: no crop defined", ErrNotReady)
	ErrAlreadyCropped = errors.New("image already cropped; load a new image to crop again")

	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// Describe returns the message a person should see for err.
func Describe(err error) string {
	var userErr *UserError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &userErr):
		return userErr.UserMessage
	case errors.Is(err, ErrUnreadableImage):
		return "That file is not an image I can read. Try another one."
	case errors.Is(err, ErrNoImage):
		return "Load an image first."
	case errors.Is(err, ErrNoCrop):
		return "Choose a crop before confirming."
	case errors.Is(err, ErrAlreadyCropped):
		return "This portrait is already cropped. Load a new image to start over."
	default:
		return err.Error()
	}
}
