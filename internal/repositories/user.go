package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/rolodex/internal/models"
	"github.com/desertthunder/rolodex/internal/shared"
)

// UserRepository persists [models.User] accounts.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user with a generated ID and normalized email.
//
// Returns [shared.ErrEmailTaken] when the email is already registered.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = shared.GenerateID()
	user.Email = shared.NormalizeEmail(user.Email)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = utcNow()
	}

	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", shared.ErrEmailTaken, user.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// Get retrieves a user by ID.
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// GetByEmail retrieves a user by email, compared after normalization.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = shared.NormalizeEmail(email)
	query := `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email), email)
}

func (r *UserRepository) scanOne(row *sql.Row, key string) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}
