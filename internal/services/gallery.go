package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"photo-vault-backend/internal/models"
	"photo-vault-backend/internal/repository"
	"photo-vault-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PhotoStore persists photo records.
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByFilename(ctx context.Context, filename string) (*models.Photo, error)
	Update(ctx context.Context, photo *models.Photo) error
	Delete(ctx context.Context, filename string) error
	ListAccessible(ctx context.Context, userID, email string) ([]*models.Photo, error)
	ListTrashed(ctx context.Context) ([]*models.Photo, error)
}

// ShareStore persists the append-only share audit log.
type ShareStore interface {
	Append(ctx context.Context, record *models.ShareRecord) error
	Deactivate(ctx context.Context, photoID, email string) error
	ListBySharer(ctx context.Context, userID string) ([]*models.ShareRecord, error)
	ListByRecipient(ctx context.Context, email string) ([]*models.ShareRecord, error)
}

// EventPublisher receives gallery change notifications. Publishing is
// best effort and must never block or fail a mutation.
type EventPublisher interface {
	PhotoUploaded(ownerID, filename string)
	PhotoShared(ownerID, recipientEmail, filename string)
	PhotoUnshared(ownerID, recipientEmail, filename string)
}

// GalleryService is the access-control and lifecycle engine. It computes
// visibility, enforces ownership on mutating operations, and manages the
// per-viewer trash transitions.
type GalleryService struct {
	photos PhotoStore
	shares ShareStore
	media  storage.MediaStore
	cache  *ListingCache
	events EventPublisher
	now    func() time.Time
}

// NewGalleryService creates a new gallery service. The cache and events
// arguments may be nil, which disables the listing cache and change
// notifications respectively.
func NewGalleryService(
	photos PhotoStore,
	shares ShareStore,
	media storage.MediaStore,
	cache *ListingCache,
	events EventPublisher,
) *GalleryService {
	return &GalleryService{
		photos: photos,
		shares: shares,
		media:  media,
		cache:  cache,
		events: events,
		now:    time.Now,
	}
}

// WithNowFunc overrides the time source. For tests.
func (s *GalleryService) WithNowFunc(now func() time.Time) {
	s.now = now
}

// HasAccess reports whether the viewer may see the photo: owner or
// share recipient. The public flag is reserved and not consulted.
func (s *GalleryService) HasAccess(viewer models.Viewer, photo *models.Photo) bool {
	if viewer.ID == photo.UploadedBy {
		return true
	}
	return viewer.Email != "" && photo.IsSharedWith(viewer.Email)
}

// ListVisible returns one summary per photo the viewer can access and
// has not trashed, newest upload first. Results are served from the
// listing cache when fresh.
func (s *GalleryService) ListVisible(ctx context.Context, viewer models.Viewer) ([]models.PhotoSummary, error) {
	if listing, ok := s.cache.Get(viewer.ID); ok {
		return listing, nil
	}

	s.adoptOrphans(ctx, viewer)

	photos, err := s.photos.ListAccessible(ctx, viewer.ID, viewer.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to list accessible photos: %w", err)
	}

	listing := make([]models.PhotoSummary, 0, len(photos))
	for _, photo := range photos {
		if _, trashed := photo.TrashBy[viewer.ID]; trashed {
			continue
		}
		summary := models.PhotoSummary{
			Name:       photo.Filename,
			Favorite:   photo.IsFavoritedBy(viewer.ID),
			IsOwner:    viewer.ID == photo.UploadedBy,
			UploadedAt: photo.CreatedAt,
		}
		if !summary.IsOwner {
			sharedBy := photo.UploadedBy
			summary.SharedBy = &sharedBy
		}
		listing = append(listing, summary)
	}

	s.cache.Set(viewer, listing)
	return listing, nil
}

// adoptOrphans creates records for media files that have none, owned by
// the listing viewer. Failures are advisory: the listing proceeds from
// the record store either way.
func (s *GalleryService) adoptOrphans(ctx context.Context, viewer models.Viewer) {
	keys, err := s.media.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to list media store for orphan adoption")
		return
	}

	for _, key := range keys {
		_, err := s.photos.GetByFilename(ctx, key)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			log.Warn().Err(err).Str("filename", key).Msg("Failed to check media file for orphan adoption")
			continue
		}

		now := s.now()
		photo := &models.Photo{
			ID:         uuid.New().String(),
			Filename:   key,
			UploadedBy: viewer.ID,
			FavoriteBy: []string{},
			TrashBy:    map[string]models.TrashMark{},
			SharedWith: []models.ShareEntry{},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		err = s.photos.Create(ctx, photo)
		if err != nil && !errors.Is(err, repository.ErrConflict) {
			log.Warn().Err(err).Str("filename", key).Msg("Failed to adopt orphan media file")
		}
	}
}

// Upload stores the binary under a server-generated filename and creates
// the owning photo record.
func (s *GalleryService) Upload(ctx context.Context, uploader models.Viewer, originalName string, r io.Reader) (*models.Photo, error) {
	filename := uuid.New().String() + strings.ToLower(filepath.Ext(originalName))

	if err := s.media.Save(ctx, filename, r); err != nil {
		return nil, fmt.Errorf("failed to store media: %w", err)
	}

	now := s.now()
	photo := &models.Photo{
		ID:         uuid.New().String(),
		Filename:   filename,
		UploadedBy: uploader.ID,
		FavoriteBy: []string{},
		TrashBy:    map[string]models.TrashMark{},
		SharedWith: []models.ShareEntry{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.photos.Create(ctx, photo); err != nil {
		if cleanupErr := s.media.Delete(ctx, filename); cleanupErr != nil {
			log.Warn().Err(cleanupErr).Str("filename", filename).Msg("Failed to clean up media after record create failure")
		}
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}

	s.cache.Invalidate(uploader.ID)
	if s.events != nil {
		s.events.PhotoUploaded(uploader.ID, filename)
	}
	return photo, nil
}

// OpenMedia returns the binary content of a photo the viewer can access.
func (s *GalleryService) OpenMedia(ctx context.Context, viewer models.Viewer, filename string) (io.ReadCloser, error) {
	photo, err := s.load(ctx, filename)
	if err != nil {
		return nil, err
	}
	if !s.HasAccess(viewer, photo) {
		return nil, ErrAccessDenied
	}

	rc, err := s.media.Open(ctx, filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open media: %w", err)
	}
	return rc, nil
}

// ToggleFavorite flips the viewer's favorite state on a photo and
// returns the new state.
func (s *GalleryService) ToggleFavorite(ctx context.Context, viewer models.Viewer, filename string) (bool, error) {
	photo, err := s.load(ctx, filename)
	if err != nil {
		return false, err
	}
	if !s.HasAccess(viewer, photo) {
		return false, ErrAccessDenied
	}

	favorite := !photo.IsFavoritedBy(viewer.ID)
	if favorite {
		photo.FavoriteBy = append(photo.FavoriteBy, viewer.ID)
	} else {
		kept := photo.FavoriteBy[:0]
		for _, id := range photo.FavoriteBy {
			if id != viewer.ID {
				kept = append(kept, id)
			}
		}
		photo.FavoriteBy = kept
	}

	if err := s.update(ctx, photo); err != nil {
		return false, err
	}
	s.cache.Invalidate(viewer.ID)
	return favorite, nil
}

// Trash moves the photo into the viewer's personal trash. Trashing an
// already-trashed photo is a no-op. The media and record persist; other
// viewers are unaffected.
func (s *GalleryService) Trash(ctx context.Context, viewer models.Viewer, filename string) error {
	photo, err := s.load(ctx, filename)
	if err != nil {
		return err
	}
	if !s.HasAccess(viewer, photo) {
		return ErrAccessDenied
	}

	if _, ok := photo.TrashBy[viewer.ID]; !ok {
		if photo.TrashBy == nil {
			photo.TrashBy = map[string]models.TrashMark{}
		}
		photo.TrashBy[viewer.ID] = models.TrashMark{TrashedAt: s.now(), Email: viewer.Email}
		if err := s.update(ctx, photo); err != nil {
			return err
		}
	}

	s.cache.Invalidate(viewer.ID)
	return nil
}

// Restore removes the viewer's trash mark. Restoring a photo that is not
// in the viewer's trash is a no-op.
func (s *GalleryService) Restore(ctx context.Context, viewer models.Viewer, filename string) error {
	photo, err := s.load(ctx, filename)
	if err != nil {
		return err
	}
	if !s.HasAccess(viewer, photo) {
		return ErrAccessDenied
	}

	if _, ok := photo.TrashBy[viewer.ID]; ok {
		delete(photo.TrashBy, viewer.ID)
		if err := s.update(ctx, photo); err != nil {
			return err
		}
	}

	s.cache.Invalidate(viewer.ID)
	return nil
}

// ListTrash returns the photos currently in the viewer's trash.
func (s *GalleryService) ListTrash(ctx context.Context, viewer models.Viewer) ([]models.TrashSummary, error) {
	photos, err := s.photos.ListAccessible(ctx, viewer.ID, viewer.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to list accessible photos: %w", err)
	}

	listing := make([]models.TrashSummary, 0)
	for _, photo := range photos {
		mark, ok := photo.TrashBy[viewer.ID]
		if !ok || mark.Deleted {
			continue
		}
		listing = append(listing, models.TrashSummary{
			Name:      photo.Filename,
			TrashedAt: mark.TrashedAt,
			IsOwner:   viewer.ID == photo.UploadedBy,
		})
	}
	return listing, nil
}

// PermanentlyDelete releases the viewer's claims on a photo: their trash
// mark and, for a recipient, their share grant. The media and record are
// purged once no viewer retains a claim; an owner deleting while shares
// remain keeps a hidden marker until the recipients' grants drain.
func (s *GalleryService) PermanentlyDelete(ctx context.Context, viewer models.Viewer, filename string) error {
	photo, err := s.load(ctx, filename)
	if err != nil {
		return err
	}
	if !s.HasAccess(viewer, photo) {
		return ErrAccessDenied
	}

	mark, hadMark := photo.TrashBy[viewer.ID]
	delete(photo.TrashBy, viewer.ID)
	return s.release(ctx, photo, viewer, mark, hadMark)
}

// ExpireTrash force-releases one viewer's trash mark as though they had
// called PermanentlyDelete themselves. Used by the retention sweep; the
// access check is skipped so stale marks of unshared viewers also clear.
func (s *GalleryService) ExpireTrash(ctx context.Context, filename, viewerID string) error {
	photo, err := s.load(ctx, filename)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	mark, ok := photo.TrashBy[viewerID]
	if !ok {
		return nil
	}
	delete(photo.TrashBy, viewerID)
	return s.release(ctx, photo, models.Viewer{ID: viewerID, Email: mark.Email}, mark, true)
}

// release finishes a permanent delete after the viewer's trash mark has
// been removed from the in-memory record.
func (s *GalleryService) release(ctx context.Context, photo *models.Photo, viewer models.Viewer, mark models.TrashMark, hadMark bool) error {
	if viewer.ID == photo.UploadedBy {
		if len(photo.SharedWith) == 0 && len(photo.TrashBy) == 0 {
			return s.purge(ctx, photo, viewer)
		}
		if len(photo.SharedWith) > 0 {
			// Recipients still hold grants. Keep a hidden marker so
			// the photo stays out of the owner's views until the
			// grants drain.
			trashedAt := mark.TrashedAt
			if !hadMark || trashedAt.IsZero() {
				trashedAt = s.now()
			}
			photo.TrashBy[viewer.ID] = models.TrashMark{TrashedAt: trashedAt, Email: viewer.Email, Deleted: true}
		}
		if err := s.update(ctx, photo); err != nil {
			return err
		}
		s.cache.Invalidate(viewer.ID)
		return nil
	}

	// Recipient: drop their share grant along with the trash mark.
	if viewer.Email != "" && photo.IsSharedWith(viewer.Email) {
		s.removeShareEntry(photo, viewer.Email)
		s.deactivateAudit(ctx, photo, viewer.Email)
	}

	ownerMark, ownerReleased := photo.TrashBy[photo.UploadedBy]
	if len(photo.SharedWith) == 0 && ownerReleased && ownerMark.Deleted {
		return s.purge(ctx, photo, viewer)
	}

	if err := s.update(ctx, photo); err != nil {
		return err
	}
	s.cache.Invalidate(viewer.ID)
	s.cache.InvalidateEmail(viewer.Email)
	return nil
}

// purge irreversibly removes the media and the photo record. A missing
// media file during cleanup is logged and swallowed.
func (s *GalleryService) purge(ctx context.Context, photo *models.Photo, viewer models.Viewer) error {
	if err := s.media.Delete(ctx, photo.Filename); err != nil {
		log.Warn().Err(err).Str("filename", photo.Filename).Msg("Failed to delete media during purge")
	}
	if err := s.photos.Delete(ctx, photo.Filename); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to delete photo record: %w", err)
	}
	s.cache.Invalidate(viewer.ID)
	s.cache.InvalidateEmail(viewer.Email)
	return nil
}

// Share grants view access on the photo to the recipient email and
// appends an audit record. Owner-only.
func (s *GalleryService) Share(ctx context.Context, owner models.Viewer, filename, recipientEmail string) error {
	photo, err := s.load(ctx, filename)
	if err != nil {
		return err
	}
	if owner.ID != photo.UploadedBy {
		return ErrAccessDenied
	}
	if photo.IsSharedWith(recipientEmail) {
		return ErrAlreadyShared
	}

	now := s.now()
	photo.SharedWith = append(photo.SharedWith, models.ShareEntry{Email: recipientEmail, SharedAt: now})
	if err := s.update(ctx, photo); err != nil {
		return err
	}

	// The audit log is a derived view; a failed append is tolerated
	// drift, not a rollback of the share itself.
	record := &models.ShareRecord{
		ID:         uuid.New().String(),
		PhotoID:    photo.ID,
		Filename:   photo.Filename,
		SharedBy:   owner.ID,
		SharedWith: recipientEmail,
		SharedAt:   now,
		IsActive:   true,
	}
	if err := s.shares.Append(ctx, record); err != nil {
		log.Error().Err(err).Str("filename", filename).Str("recipient", recipientEmail).Msg("Failed to append share audit record")
	}

	s.cache.Invalidate(owner.ID)
	s.cache.InvalidateEmail(recipientEmail)
	if s.events != nil {
		s.events.PhotoShared(owner.ID, recipientEmail, filename)
	}
	return nil
}

// Unshare revokes the recipient's view access and deactivates the audit
// record. Revoking a grant that does not exist is a no-op, so the call
// is idempotent. Owner-only.
func (s *GalleryService) Unshare(ctx context.Context, owner models.Viewer, filename, recipientEmail string) error {
	photo, err := s.load(ctx, filename)
	if err != nil {
		return err
	}
	if owner.ID != photo.UploadedBy {
		return ErrAccessDenied
	}

	if photo.IsSharedWith(recipientEmail) {
		s.removeShareEntry(photo, recipientEmail)
		if err := s.update(ctx, photo); err != nil {
			return err
		}
		s.deactivateAudit(ctx, photo, recipientEmail)
	}

	s.cache.Invalidate(owner.ID)
	s.cache.InvalidateEmail(recipientEmail)
	if s.events != nil {
		s.events.PhotoUnshared(owner.ID, recipientEmail, filename)
	}
	return nil
}

// SharedWith lists the recipient grants on a photo. Owner-only.
func (s *GalleryService) SharedWith(ctx context.Context, owner models.Viewer, filename string) ([]models.ShareEntry, error) {
	photo, err := s.load(ctx, filename)
	if err != nil {
		return nil, err
	}
	if owner.ID != photo.UploadedBy {
		return nil, ErrAccessDenied
	}
	entries := photo.SharedWith
	if entries == nil {
		entries = []models.ShareEntry{}
	}
	return entries, nil
}

// SharedByMe lists the viewer's active outgoing shares from the audit log.
func (s *GalleryService) SharedByMe(ctx context.Context, viewer models.Viewer) ([]*models.ShareRecord, error) {
	records, err := s.shares.ListBySharer(ctx, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	return records, nil
}

// SharedWithMe lists the viewer's active incoming shares from the audit log.
func (s *GalleryService) SharedWithMe(ctx context.Context, viewer models.Viewer) ([]*models.ShareRecord, error) {
	records, err := s.shares.ListByRecipient(ctx, viewer.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	return records, nil
}

func (s *GalleryService) load(ctx context.Context, filename string) (*models.Photo, error) {
	photo, err := s.photos.GetByFilename(ctx, filename)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load photo: %w", err)
	}
	return photo, nil
}

func (s *GalleryService) update(ctx context.Context, photo *models.Photo) error {
	photo.UpdatedAt = s.now()
	if err := s.photos.Update(ctx, photo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update photo: %w", err)
	}
	return nil
}

func (s *GalleryService) removeShareEntry(photo *models.Photo, email string) {
	kept := photo.SharedWith[:0]
	for _, entry := range photo.SharedWith {
		if entry.Email != email {
			kept = append(kept, entry)
		}
	}
	photo.SharedWith = kept
}

func (s *GalleryService) deactivateAudit(ctx context.Context, photo *models.Photo, email string) {
	if err := s.shares.Deactivate(ctx, photo.ID, email); err != nil {
		log.Error().Err(err).Str("filename", photo.Filename).Str("recipient", email).Msg("Failed to deactivate share audit record")
	}
}
