package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"photo-vault-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AlbumRepository handles database operations for albums.
type AlbumRepository struct {
	db *pgxpool.Pool
}

// NewAlbumRepository creates a new album repository
func NewAlbumRepository(db *pgxpool.Pool) *AlbumRepository {
	return &AlbumRepository{db: db}
}

// Create inserts a new album.
func (r *AlbumRepository) Create(ctx context.Context, album *models.Album) error {
	photos, err := json.Marshal(nonNilStrings(album.Photos))
	if err != nil {
		return fmt.Errorf("failed to marshal album photos: %w", err)
	}

	query := `
		INSERT INTO albums (id, name, photos, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.db.Exec(ctx, query, album.ID, album.Name, photos, album.CreatedBy, album.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create album: %w", err)
	}
	return nil
}

// GetByName retrieves an album by name for the given owner.
func (r *AlbumRepository) GetByName(ctx context.Context, owner, name string) (*models.Album, error) {
	query := `
		SELECT id, name, photos, created_by, created_at
		FROM albums
		WHERE created_by = $1 AND name = $2
	`
	album, err := scanAlbum(r.db.QueryRow(ctx, query, owner, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	return album, nil
}

// UpdatePhotos replaces the filename list of an album.
func (r *AlbumRepository) UpdatePhotos(ctx context.Context, albumID string, filenames []string) error {
	photos, err := json.Marshal(nonNilStrings(filenames))
	if err != nil {
		return fmt.Errorf("failed to marshal album photos: %w", err)
	}

	result, err := r.db.Exec(ctx, `UPDATE albums SET photos = $1 WHERE id = $2`, photos, albumID)
	if err != nil {
		return fmt.Errorf("failed to update album: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOwner retrieves all albums created by the given user.
func (r *AlbumRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Album, error) {
	query := `
		SELECT id, name, photos, created_by, created_at
		FROM albums
		WHERE created_by = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	defer rows.Close()

	var albums []*models.Album
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		albums = append(albums, album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating albums: %w", err)
	}
	return albums, nil
}

func scanAlbum(row pgx.Row) (*models.Album, error) {
	var (
		album  models.Album
		photos []byte
	)
	if err := row.Scan(&album.ID, &album.Name, &photos, &album.CreatedBy, &album.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(photos, &album.Photos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal album photos: %w", err)
	}
	return &album, nil
}
