package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"photo-vault-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PhotoRepository handles database operations for photo records.
//
// The lifecycle fields (favorite_by, trash_by, shared_with) are stored as
// JSONB documents on the photo row, so a full-row update is the unit of
// atomicity: concurrent writers to the same record resolve last-write-wins.
type PhotoRepository struct {
	db *pgxpool.Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create inserts a new photo record. Returns ErrConflict if a record with
// the same filename already exists.
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	favoriteBy, trashBy, sharedWith, err := marshalLifecycle(photo)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO photos (id, filename, uploaded_by, favorite_by, trash_by, shared_with, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.Exec(ctx, query,
		photo.ID, photo.Filename, photo.UploadedBy,
		favoriteBy, trashBy, sharedWith,
		photo.IsPublic, photo.CreatedAt, photo.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetByFilename retrieves a photo record by filename.
func (r *PhotoRepository) GetByFilename(ctx context.Context, filename string) (*models.Photo, error) {
	query := `
		SELECT id, filename, uploaded_by, favorite_by, trash_by, shared_with, is_public, created_at, updated_at
		FROM photos
		WHERE filename = $1
	`
	photo, err := scanPhoto(r.db.QueryRow(ctx, query, filename))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return photo, nil
}

// Update persists the mutable lifecycle state of a photo record.
func (r *PhotoRepository) Update(ctx context.Context, photo *models.Photo) error {
	favoriteBy, trashBy, sharedWith, err := marshalLifecycle(photo)
	if err != nil {
		return err
	}

	query := `
		UPDATE photos
		SET favorite_by = $1, trash_by = $2, shared_with = $3, is_public = $4, updated_at = $5
		WHERE filename = $6
	`
	result, err := r.db.Exec(ctx, query,
		favoriteBy, trashBy, sharedWith, photo.IsPublic, photo.UpdatedAt, photo.Filename,
	)
	if err != nil {
		return fmt.Errorf("failed to update photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a photo record entirely.
func (r *PhotoRepository) Delete(ctx context.Context, filename string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM photos WHERE filename = $1`, filename)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAccessible retrieves all photos the given viewer owns or has been
// granted access to by email, newest first.
func (r *PhotoRepository) ListAccessible(ctx context.Context, userID, email string) ([]*models.Photo, error) {
	query := `
		SELECT id, filename, uploaded_by, favorite_by, trash_by, shared_with, is_public, created_at, updated_at
		FROM photos
		WHERE uploaded_by = $1
		   OR shared_with @> jsonb_build_array(jsonb_build_object('email', $2::text))
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	return collectPhotos(rows)
}

// ListTrashed retrieves all photos present in any viewer's trash.
func (r *PhotoRepository) ListTrashed(ctx context.Context) ([]*models.Photo, error) {
	query := `
		SELECT id, filename, uploaded_by, favorite_by, trash_by, shared_with, is_public, created_at, updated_at
		FROM photos
		WHERE trash_by <> '{}'::jsonb
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list trashed photos: %w", err)
	}
	defer rows.Close()

	return collectPhotos(rows)
}

func marshalLifecycle(photo *models.Photo) (favoriteBy, trashBy, sharedWith []byte, err error) {
	if favoriteBy, err = json.Marshal(nonNilStrings(photo.FavoriteBy)); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal favorite_by: %w", err)
	}
	trash := photo.TrashBy
	if trash == nil {
		trash = map[string]models.TrashMark{}
	}
	if trashBy, err = json.Marshal(trash); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal trash_by: %w", err)
	}
	shares := photo.SharedWith
	if shares == nil {
		shares = []models.ShareEntry{}
	}
	if sharedWith, err = json.Marshal(shares); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal shared_with: %w", err)
	}
	return favoriteBy, trashBy, sharedWith, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var (
		photo      models.Photo
		favoriteBy []byte
		trashBy    []byte
		sharedWith []byte
	)
	err := row.Scan(
		&photo.ID, &photo.Filename, &photo.UploadedBy,
		&favoriteBy, &trashBy, &sharedWith,
		&photo.IsPublic, &photo.CreatedAt, &photo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(favoriteBy, &photo.FavoriteBy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal favorite_by: %w", err)
	}
	if err := json.Unmarshal(trashBy, &photo.TrashBy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trash_by: %w", err)
	}
	if err := json.Unmarshal(sharedWith, &photo.SharedWith); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shared_with: %w", err)
	}
	return &photo, nil
}

func collectPhotos(rows pgx.Rows) ([]*models.Photo, error) {
	var photos []*models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}
	return photos, nil
}
