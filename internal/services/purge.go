package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// TrashSweeper periodically force-expires trash marks older than the
// retention window, as though PermanentlyDelete had been called on the
// marking viewer's behalf.
type TrashSweeper struct {
	gallery   *GalleryService
	photos    PhotoStore
	retention time.Duration
	interval  time.Duration
	now       func() time.Time

	mu sync.Mutex // guards against overlapping sweeps
}

// NewTrashSweeper creates a sweeper with the given retention window and
// sweep interval.
func NewTrashSweeper(gallery *GalleryService, photos PhotoStore, retention, interval time.Duration) *TrashSweeper {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &TrashSweeper{
		gallery:   gallery,
		photos:    photos,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

// WithNowFunc overrides the time source. For tests.
func (t *TrashSweeper) WithNowFunc(now func() time.Time) {
	t.now = now
}

// Run sweeps once immediately, then on every interval tick until the
// context is cancelled.
func (t *TrashSweeper) Run(ctx context.Context) {
	t.Sweep(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Sweep(ctx)
		}
	}
}

// Sweep expires all overdue trash marks. At most one sweep runs at a
// time; a sweep requested while another is in flight is skipped.
func (t *TrashSweeper) Sweep(ctx context.Context) {
	if !t.mu.TryLock() {
		log.Debug().Msg("Trash sweep already in flight, skipping")
		return
	}
	defer t.mu.Unlock()

	photos, err := t.photos.ListTrashed(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list trashed photos for sweep")
		return
	}

	cutoff := t.now().Add(-t.retention)
	expired := 0
	for _, photo := range photos {
		for viewerID, mark := range photo.TrashBy {
			if mark.TrashedAt.After(cutoff) {
				continue
			}
			if err := t.gallery.ExpireTrash(ctx, photo.Filename, viewerID); err != nil {
				log.Error().Err(err).
					Str("filename", photo.Filename).
					Str("viewer_id", viewerID).
					Msg("Failed to expire trash mark")
				continue
			}
			expired++
		}
	}

	if expired > 0 {
		log.Info().Int("expired", expired).Msg("Trash sweep completed")
	}
}
