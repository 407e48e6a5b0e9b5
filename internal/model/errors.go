package model

import "errors"

// Common errors used across the application
var (
	// Lookup misses. Callers decide what an absent value means; these are
	// never fatal on their own.
	ErrUserNotFound   = errors.New("user not found")
	ErrTempIDNotFound = errors.New("temp ID not found")

	// Protocol errors
	ErrProtocolViolation = errors.New("protocol violation")
	ErrMalformedRecord   = errors.New("malformed record")

	// Authentication outcomes
	ErrAuthFailed    = errors.New("authentication failed")
	ErrUserBlocked   = errors.New("user is blocked")
	ErrUserLockedOut = errors.New("user locked out after repeated failures")
)
