package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photo-vault-backend/internal/models"
	"photo-vault-backend/internal/repository"

	"github.com/google/uuid"
)

// AlbumStore persists albums.
type AlbumStore interface {
	Create(ctx context.Context, album *models.Album) error
	GetByName(ctx context.Context, owner, name string) (*models.Album, error)
	UpdatePhotos(ctx context.Context, albumID string, filenames []string) error
	ListByOwner(ctx context.Context, owner string) ([]*models.Album, error)
}

// AlbumSummary is one entry of a viewer's album listing.
type AlbumSummary struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Photos []string `json:"photos"`
	Cover  *string  `json:"cover"`
}

// AlbumService groups photos into named, per-owner albums. Albums have
// no lifecycle rules of their own: adding to a missing album creates it,
// adding to an existing one unions the new filenames in.
type AlbumService struct {
	albums AlbumStore
	now    func() time.Time
}

// NewAlbumService creates a new album service
func NewAlbumService(albums AlbumStore) *AlbumService {
	return &AlbumService{albums: albums, now: time.Now}
}

// List returns the viewer's albums with the first photo as cover.
func (s *AlbumService) List(ctx context.Context, viewer models.Viewer) ([]AlbumSummary, error) {
	albums, err := s.albums.ListByOwner(ctx, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}

	summaries := make([]AlbumSummary, 0, len(albums))
	for _, album := range albums {
		summary := AlbumSummary{
			ID:     album.ID,
			Name:   album.Name,
			Photos: album.Photos,
		}
		if len(album.Photos) > 0 {
			cover := album.Photos[0]
			summary.Cover = &cover
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Add puts the given filenames into the named album, creating the album
// if it does not exist and skipping filenames already present.
func (s *AlbumService) Add(ctx context.Context, viewer models.Viewer, albumName string, filenames []string) (*models.Album, error) {
	album, err := s.albums.GetByName(ctx, viewer.ID, albumName)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to load album: %w", err)
		}
		album = &models.Album{
			ID:        uuid.New().String(),
			Name:      albumName,
			Photos:    dedupe(filenames),
			CreatedBy: viewer.ID,
			CreatedAt: s.now(),
		}
		if err := s.albums.Create(ctx, album); err != nil {
			return nil, fmt.Errorf("failed to create album: %w", err)
		}
		return album, nil
	}

	merged := album.Photos
	seen := make(map[string]bool, len(merged))
	for _, name := range merged {
		seen[name] = true
	}
	for _, name := range filenames {
		if !seen[name] {
			merged = append(merged, name)
			seen[name] = true
		}
	}

	if len(merged) != len(album.Photos) {
		if err := s.albums.UpdatePhotos(ctx, album.ID, merged); err != nil {
			return nil, fmt.Errorf("failed to update album: %w", err)
		}
		album.Photos = merged
	}
	return album, nil
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	return out
}
