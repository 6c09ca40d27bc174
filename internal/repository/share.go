package repository

import (
	"context"
	"fmt"

	"photo-vault-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ShareRepository handles database operations for the share audit log.
// Records are append-only; unsharing deactivates rather than deletes.
type ShareRepository struct {
	db *pgxpool.Pool
}

// NewShareRepository creates a new share repository
func NewShareRepository(db *pgxpool.Pool) *ShareRepository {
	return &ShareRepository{db: db}
}

// Append writes a new share record.
func (r *ShareRepository) Append(ctx context.Context, record *models.ShareRecord) error {
	query := `
		INSERT INTO share_records (id, photo_id, filename, shared_by, shared_with, shared_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		record.ID, record.PhotoID, record.Filename,
		record.SharedBy, record.SharedWith, record.SharedAt, record.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to append share record: %w", err)
	}
	return nil
}

// Deactivate marks the active record for (photoID, email) inactive.
// Deactivating a record that does not exist is not an error.
func (r *ShareRepository) Deactivate(ctx context.Context, photoID, email string) error {
	query := `
		UPDATE share_records
		SET is_active = FALSE
		WHERE photo_id = $1 AND shared_with = $2 AND is_active
	`
	if _, err := r.db.Exec(ctx, query, photoID, email); err != nil {
		return fmt.Errorf("failed to deactivate share record: %w", err)
	}
	return nil
}

// ListBySharer retrieves active share records created by the given user.
func (r *ShareRepository) ListBySharer(ctx context.Context, userID string) ([]*models.ShareRecord, error) {
	query := `
		SELECT id, photo_id, filename, shared_by, shared_with, shared_at, is_active
		FROM share_records
		WHERE shared_by = $1 AND is_active
		ORDER BY shared_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list share records: %w", err)
	}
	defer rows.Close()

	return collectShareRecords(rows)
}

// ListByRecipient retrieves active share records addressed to the given email.
func (r *ShareRepository) ListByRecipient(ctx context.Context, email string) ([]*models.ShareRecord, error) {
	query := `
		SELECT id, photo_id, filename, shared_by, shared_with, shared_at, is_active
		FROM share_records
		WHERE shared_with = $1 AND is_active
		ORDER BY shared_at DESC
	`
	rows, err := r.db.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list share records: %w", err)
	}
	defer rows.Close()

	return collectShareRecords(rows)
}

func collectShareRecords(rows pgx.Rows) ([]*models.ShareRecord, error) {
	var records []*models.ShareRecord
	for rows.Next() {
		var record models.ShareRecord
		err := rows.Scan(
			&record.ID, &record.PhotoID, &record.Filename,
			&record.SharedBy, &record.SharedWith, &record.SharedAt, &record.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share record: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating share records: %w", err)
	}
	return records, nil
}
