package moodchat_errors

import "errors"

// Common errors
var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrEmptyMessage      = errors.New("message content required")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyExists     = errors.New("already exists")
	ErrRateLimited       = errors.New("rate limited")
	ErrStaleConnection   = errors.New("stale connection")
)
