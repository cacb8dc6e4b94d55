// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned by repositories when an insert violates a
// uniqueness constraint enforced by the store.
var ErrDuplicate = errors.New("duplicate record")

// ErrNotFound is returned by updates that target a missing record.
var ErrNotFound = errors.New("record not found")

// User represents a registered user.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	DateOfBirth  time.Time `json:"dateOfBirth"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	PhoneNumber  string    `json:"phoneNumber"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DisplayName returns "First Last", falling back to the username.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// NewUser carries the fields needed to create a User.
type NewUser struct {
	FirstName    string
	LastName     string
	DateOfBirth  time.Time
	Username     string
	PasswordHash string
	PhoneNumber  string
}

// ProfileUpdate holds the user fields that may change after registration.
type ProfileUpdate struct {
	FirstName   string
	LastName    string
	PhoneNumber string
}

// Session represents an active user session. It references the user by id
// only; user fields are always read fresh from the UserRepository.
type Session struct {
	Token     string
	UserID    string
	UserAgent string
	IP        string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// UserRepository defines the port for user persistence operations.
// Lookups return (nil, nil) when no user matches.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u NewUser) (*User, error)
	UpdateProfile(ctx context.Context, id string, p ProfileUpdate) error
	Count(ctx context.Context) (int, error)
}

// SessionRepository defines the port for session persistence operations.
// GetByToken returns (nil, nil) when the token is unknown.
type SessionRepository interface {
	Create(ctx context.Context, s Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}
