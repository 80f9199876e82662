package entities

import "errors"

// Domain errors
var (
	// Meeting store errors
	ErrMeetingNotFound = errors.New("meeting not found")
	ErrInvalidSlug     = errors.New("invalid meeting slug")

	// Lock errors
	ErrLockNotAcquired = errors.New("meeting lock not acquired")
)
