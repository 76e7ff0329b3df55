package app

import (
	"errors"
	"fmt"
)

// Sentinel errors for the application layer.
var (
	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNotRunning is returned for operations that need a running
	// application.
	ErrNotRunning = errors.New("application not running")

	// errNoPoster is returned when the backend requires a designated
	// draw thread but no poster was supplied.
	errNoPoster = errors.New("single-threaded-draw backend requires a draw poster")
)

// InitError wraps a component initialization failure.
type InitError struct {
	Component string
	Err       error
}

// Error implements error.
func (e *InitError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}
