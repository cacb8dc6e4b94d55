package app

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials indicates that the provided username or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername indicates that the username is already registered.
	ErrDuplicateUsername = errors.New("username already registered")
	// ErrAlreadyBooked indicates the user already holds a reservation for the listing.
	ErrAlreadyBooked = errors.New("listing already booked by user")
	// ErrNotEntitled indicates the user has no reservation for the listing being reviewed.
	ErrNotEntitled = errors.New("no reservation for listing")
	// ErrListingNotFound indicates that the listing does not exist.
	ErrListingNotFound = errors.New("listing not found")
	// ErrStoreUnavailable wraps any failure of the underlying record store.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func required(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}

// unavailable marks err as a store failure while keeping the cause.
func unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
