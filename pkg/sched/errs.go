package sched

import "errors"

var (
	// ErrProcessNotFound indicates the target process no longer exists.
	// Callers treat this as the process having exited, distinct from a
	// transient read error.
	ErrProcessNotFound = errors.New("sched: process not found")
)
