package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/rolodex/internal/shared"
)

// ProfileRepository reads and writes the per-user display name.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new [ProfileRepository] with the given database connection
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FullName returns the display name for userID, or [shared.ErrProfileNotFound].
func (r *ProfileRepository) FullName(ctx context.Context, userID string) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, "SELECT full_name FROM profiles WHERE user_id = ? LIMIT 1", userID).Scan(&name)
	if isNoRows(err) {
		return "", fmt.Errorf("%w: %s", shared.ErrProfileNotFound, userID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query profile: %w", err)
	}
	return name, nil
}

// Upsert sets the display name for userID.
func (r *ProfileRepository) Upsert(ctx context.Context, userID, fullName string) error {
	query := `
		INSERT INTO profiles (user_id, full_name) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET full_name = excluded.full_name
	`
	if _, err := r.db.ExecContext(ctx, query, userID, fullName); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
