// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"stays/internal/domain"
	"stays/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultSessionTTL is used when NewAuthService is given a zero TTL.
const DefaultSessionTTL = 24 * time.Hour

const dateLayout = "2006-01-02"

// Registration is the validated input of Register.
type Registration struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	Username    string
	Password    string
	PhoneNumber string
}

// AuthService handles registration, authentication and session management.
type AuthService struct {
	users      domain.UserRepository
	sessions   domain.SessionRepository
	hasher     Hasher
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, hasher Hasher, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		hasher:     hasher,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Register creates a new user with a hashed password.
func (s *AuthService) Register(ctx context.Context, reg Registration) (_ *domain.User, err error) {
	ctx, span := observability.StartSpan(ctx, "AuthService.Register", attribute.String("username", reg.Username))
	defer func() { observability.EndSpan(span, err) }()
	defer func() { observability.RegistrationsTotal.WithLabelValues(outcome(err)).Inc() }()

	reg.Username = strings.TrimSpace(reg.Username)
	for _, f := range []struct{ name, value string }{
		{"firstName", strings.TrimSpace(reg.FirstName)},
		{"lastName", strings.TrimSpace(reg.LastName)},
		{"dateOfBirth", reg.DateOfBirth},
		{"username", reg.Username},
		{"password", reg.Password},
		{"phoneNumber", strings.TrimSpace(reg.PhoneNumber)},
	} {
		if err := required(f.name, f.value); err != nil {
			return nil, err
		}
	}
	dob, err := time.Parse(dateLayout, reg.DateOfBirth)
	if err != nil {
		return nil, &ValidationError{Field: "dateOfBirth", Reason: "must be YYYY-MM-DD"}
	}

	existing, err := s.users.GetByUsername(ctx, reg.Username)
	if err != nil {
		return nil, unavailable(err)
	}
	if existing != nil {
		return nil, ErrDuplicateUsername
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, domain.NewUser{
		FirstName:    strings.TrimSpace(reg.FirstName),
		LastName:     strings.TrimSpace(reg.LastName),
		DateOfBirth:  dob,
		Username:     reg.Username,
		PasswordHash: hash,
		PhoneNumber:  strings.TrimSpace(reg.PhoneNumber),
	})
	if errors.Is(err, domain.ErrDuplicate) {
		// Lost a race with a concurrent registration; the store's unique
		// index decided.
		return nil, ErrDuplicateUsername
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return user, nil
}

// Login authenticates a user and creates a session.
func (s *AuthService) Login(ctx context.Context, username, password, userAgent, ip string) (string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", unavailable(err)
	}
	if user == nil || !s.hasher.Verify(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.createSession(ctx, user.ID, userAgent, ip)
}

// Logout invalidates a session. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return unavailable(err)
	}
	return nil
}

// ValidateSession checks if a session token is valid and matches the user
// agent, returning the current user record.
func (s *AuthService) ValidateSession(ctx context.Context, token, userAgent string) (*domain.User, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, unavailable(err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if s.now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	if session.UserAgent != userAgent {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, unavailable(err)
	}
	if user == nil {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile overwrites the user's name and phone number and returns the
// re-read record.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, p domain.ProfileUpdate) (*domain.User, error) {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
	if err := required("firstName", p.FirstName); err != nil {
		return nil, err
	}
	if err := required("lastName", p.LastName); err != nil {
		return nil, err
	}
	if err := required("phoneNumber", p.PhoneNumber); err != nil {
		return nil, err
	}

	if err := s.users.UpdateProfile(ctx, userID, p); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, unavailable(err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, unavailable(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// SSOIdentity carries the claims taken from a verified OIDC ID token.
type SSOIdentity struct {
	Username  string
	FirstName string
	LastName  string
}

// LoginWithUser creates a session for an already authenticated user (e.g.
// via SSO), provisioning a passwordless account on first sign-in. An
// identity whose username matches an existing account signs into that
// account, including one registered with a password.
func (s *AuthService) LoginWithUser(ctx context.Context, id SSOIdentity, userAgent, ip string) (string, error) {
	id.Username = strings.TrimSpace(id.Username)
	if id.Username == "" {
		return "", &ValidationError{Field: "username", Reason: "is required"}
	}
	user, err := s.users.GetByUsername(ctx, id.Username)
	if err != nil {
		return "", unavailable(err)
	}
	if user == nil {
		user, err = s.users.Create(ctx, domain.NewUser{
			FirstName: id.FirstName,
			LastName:  id.LastName,
			Username:  id.Username,
		})
		if errors.Is(err, domain.ErrDuplicate) {
			// Created concurrently; read the winner.
			user, err = s.users.GetByUsername(ctx, id.Username)
		}
		if err != nil {
			return "", unavailable(err)
		}
		if user == nil {
			return "", ErrUserNotFound
		}
	}
	return s.createSession(ctx, user.ID, userAgent, ip)
}

// PurgeExpiredSessions removes sessions past their expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) error {
	if err := s.sessions.DeleteExpired(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *AuthService) createSession(ctx context.Context, userID, userAgent, ip string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	now := s.now()
	err = s.sessions.Create(ctx, domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	})
	if err != nil {
		return "", unavailable(err)
	}
	return token, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// outcome maps a service error to a metrics label.
func outcome(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, ErrStoreUnavailable):
		return "error"
	default:
		return "rejected"
	}
}
