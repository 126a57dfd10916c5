package domain

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPageMapNotFound = errors.New("page map not found")
	ErrPageNotFound    = errors.New("page not found")
	ErrInvalidPage     = errors.New("invalid page")

	// ErrIdleTrackerRequired is a configuration error: a session store cannot run
	// without an idle tracker bound to it.
	ErrIdleTrackerRequired = errors.New("idle tracker is required")
)
