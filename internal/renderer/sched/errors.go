package sched

import "errors"

// Sentinel errors for the scheduler.
var (
	// ErrMailboxFull is returned when the command mailbox cannot
	// accept another command.
	ErrMailboxFull = errors.New("scheduler mailbox is full")

	// ErrNotRunning is returned when posting to a stopped scheduler.
	ErrNotRunning = errors.New("scheduler is not running")
)
