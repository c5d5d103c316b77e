package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/rolodex/internal/models"
	"github.com/desertthunder/rolodex/internal/shared"
)

const contactColumns = `id, user_id, name, email, phone, address, city, notes, created_at`

// ContactRepository persists [models.Contact] rows.
//
// Every statement is scoped by user_id: a caller can only see or change rows it owns,
// and a row owned by someone else is indistinguishable from a missing one.
type ContactRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewContactRepository creates a new [ContactRepository] with the given database connection
func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db, now: utcNow}
}

// List returns every contact owned by userID, newest first.
func (r *ContactRepository) List(ctx context.Context, userID string) ([]models.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = ?
		ORDER BY created_at DESC, sequence DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return contacts, nil
}

// Get retrieves one contact owned by userID.
func (r *ContactRepository) Get(ctx context.Context, userID, id string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ? AND user_id = ?`

	c, err := scanContact(r.db.QueryRowContext(ctx, query, id, userID))
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: %s", shared.ErrContactNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts rec as a new contact owned by userID.
//
// The store assigns id, created_at and owner. Empty optional fields are
// stored as NULL. City is not written.
func (r *ContactRepository) Create(ctx context.Context, userID string, rec models.ContactRecord) (*models.Contact, error) {
	if !rec.IsNew() {
		return nil, fmt.Errorf("%w: new contact must not carry an id", shared.ErrInvalidInput)
	}
	rec = rec.Normalize()
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(ctx, tx, "contacts")
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}

	c := &models.Contact{
		ID:        shared.GenerateID(),
		UserID:    userID,
		Name:      rec.Name,
		Email:     rec.Email,
		Phone:     rec.Phone,
		Address:   rec.Address,
		Notes:     rec.Notes,
		CreatedAt: r.now(),
	}

	query := `
		INSERT INTO contacts (id, sequence, user_id, name, email, phone, address, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		c.ID, sequence, c.UserID, c.Name,
		nullable(c.Email), nullable(c.Phone), nullable(c.Address), nullable(c.Notes),
		c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert contact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit contact: %w", err)
	}

	return c, nil
}

// Update overwrites name, email, phone, address and notes of the contact rec.ID owned by userID.
//
// id, owner, created_at and city are never touched.
func (r *ContactRepository) Update(ctx context.Context, userID string, rec models.ContactRecord) (*models.Contact, error) {
	if rec.IsNew() {
		return nil, fmt.Errorf("%w: update requires an id", shared.ErrInvalidInput)
	}
	rec = rec.Normalize()
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE contacts
		SET name = ?, email = ?, phone = ?, address = ?, notes = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		rec.Name, nullable(rec.Email), nullable(rec.Phone), nullable(rec.Address), nullable(rec.Notes),
		rec.ID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrContactNotFound, rec.ID)
	}

	return r.Get(ctx, userID, rec.ID)
}

// Delete permanently removes the contact id owned by userID.
func (r *ContactRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM contacts WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrContactNotFound, id)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanContact scans a single row from [sql.Row] or [sql.Rows] into a [models.Contact]
func scanContact(s scanner) (*models.Contact, error) {
	var (
		c                                  models.Contact
		email, phone, address, city, notes sql.NullString
	)

	err := s.Scan(&c.ID, &c.UserID, &c.Name, &email, &phone, &address, &city, &notes, &c.CreatedAt)
	if isNoRows(err) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contact: %w", err)
	}

	c.Email = optional(email)
	c.Phone = optional(phone)
	c.Address = optional(address)
	c.City = optional(city)
	c.Notes = optional(notes)

	return &c, nil
}
