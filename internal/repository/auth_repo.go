package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"home_energy/internal/apperr"
	"home_energy/internal/models"
)

type UserRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// Ensure implementation of Authorization interface at compile time.
var _ Authorization = (*UserRepository)(nil)

const (
	insertUserSQL        = `INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)`
	selectUserByEmailSQL = `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`
)

// Create inserts a new user and returns its ID. A taken email is a validation error.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (int, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL, email, passwordHash, r.now().Unix())
	if err != nil {
		if isConstraint(err) {
			return 0, apperr.Validation("email %q is already registered", email)
		}
		return 0, wrap("insert user", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, wrap("get last insert id for user", err)
	}
	return int(lastID), nil
}

// GetByEmail fetches a user by email. Returns (nil, nil) if not found.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var (
		u       models.User
		created int64
	)
	err := r.db.QueryRowContext(ctx, selectUserByEmailSQL, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("select user", err)
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return &u, nil
}
