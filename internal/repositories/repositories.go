// package repositories provides persistence layer implementations for all model types.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// NextSequence increments and returns the next sequence number for the given table inside tx.
//
// Sequence numbers break created_at ties so list ordering is total. They are never shown.
func NextSequence(ctx context.Context, tx *sql.Tx, table string) (int64, error) {
	sequenceTable := table + "_sequence"

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable)); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int64
	if err := tx.QueryRowContext(ctx, fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	return sequence, nil
}

// nullable maps an optional field to a driver value: nil stays NULL.
func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// optional maps a scanned nullable column back to an optional field.
func optional(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// utcNow is the clock used for server-assigned timestamps.
func utcNow() time.Time {
	return time.Now().UTC()
}
