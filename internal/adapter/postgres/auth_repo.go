package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"stays/internal/domain"

	"github.com/google/uuid"
)

const (
	selectUserColumns = "SELECT id, first_name, last_name, date_of_birth, username, password_hash, phone_number, created_at FROM users"

	queryUserByUsername = selectUserColumns + " WHERE username = $1"
	queryUserByID       = selectUserColumns + " WHERE id = $1"
	insertUser          = `INSERT INTO users (id, first_name, last_name, date_of_birth, username, password_hash, phone_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	updateUserProfile = "UPDATE users SET first_name = $1, last_name = $2, phone_number = $3 WHERE id = $4"
	countUsers        = "SELECT COUNT(*) FROM users"

	insertSession        = "INSERT INTO sessions (token, user_id, user_agent, ip, expires_at, created_at) VALUES ($1, $2, $3, $4, $5, $6)"
	querySessionByToken  = "SELECT token, user_id, user_agent, ip, expires_at, created_at FROM sessions WHERE token = $1"
	deleteSession        = "DELETE FROM sessions WHERE token = $1"
	deleteExpiredSession = "DELETE FROM sessions WHERE expires_at < $1"
)

type userRow struct {
	ID           string       `db:"id"`
	FirstName    string       `db:"first_name"`
	LastName     string       `db:"last_name"`
	DateOfBirth  sql.NullTime `db:"date_of_birth"`
	Username     string       `db:"username"`
	PasswordHash string       `db:"password_hash"`
	PhoneNumber  string       `db:"phone_number"`
	CreatedAt    time.Time    `db:"created_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		DateOfBirth:  r.DateOfBirth.Time,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		PhoneNumber:  r.PhoneNumber,
		CreatedAt:    r.CreatedAt,
	}
}

func (d *DB) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var row userRow
	err := d.sql.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// GetByUsername retrieves a user by username.
func (d *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return d.getUser(ctx, queryUserByUsername, username)
}

// GetByID retrieves a user by ID.
func (d *DB) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return d.getUser(ctx, queryUserByID, id)
}

// Create creates a new user. A taken username yields domain.ErrDuplicate.
func (d *DB) Create(ctx context.Context, nu domain.NewUser) (*domain.User, error) {
	u := &domain.User{
		ID:           uuid.NewString(),
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		DateOfBirth:  nu.DateOfBirth,
		Username:     nu.Username,
		PasswordHash: nu.PasswordHash,
		PhoneNumber:  nu.PhoneNumber,
		CreatedAt:    time.Now().UTC(),
	}
	dob := sql.NullTime{Time: nu.DateOfBirth, Valid: !nu.DateOfBirth.IsZero()}
	_, err := d.sql.ExecContext(ctx, insertUser,
		u.ID, u.FirstName, u.LastName, dob, u.Username, u.PasswordHash, u.PhoneNumber, u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, domain.ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile overwrites the mutable profile fields.
func (d *DB) UpdateProfile(ctx context.Context, id string, p domain.ProfileUpdate) error {
	res, err := d.sql.ExecContext(ctx, updateUserProfile, p.FirstName, p.LastName, p.PhoneNumber, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the total number of users.
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int
	err := d.sql.GetContext(ctx, &count, countUsers)
	return count, err
}

// SessionRepo implements session repository operations on DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

type sessionRow struct {
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	UserAgent string    `db:"user_agent"`
	IP        string    `db:"ip"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.sql.ExecContext(ctx, insertSession,
		s.Token, s.UserID, s.UserAgent, s.IP, s.ExpiresAt, s.CreatedAt,
	)
	return err
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var row sessionRow
	err := r.db.sql.GetContext(ctx, &row, querySessionByToken, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		Token:     row.Token,
		UserID:    row.UserID,
		UserAgent: row.UserAgent,
		IP:        row.IP,
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
	}, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.sql.ExecContext(ctx, deleteSession, token)
	return err
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.sql.ExecContext(ctx, deleteExpiredSession, time.Now())
	return err
}
