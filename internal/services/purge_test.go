package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"photo-vault-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSweeperFixture(t *testing.T, base time.Time) (*fixture, *TrashSweeper, *time.Time) {
	t.Helper()
	f := newFixture(t)

	now := base
	f.gallery.WithNowFunc(func() time.Time { return now })

	sweeper := NewTrashSweeper(f.gallery, f.photos, 30*24*time.Hour, 24*time.Hour)
	sweeper.WithNowFunc(func() time.Time { return now })
	return f, sweeper, &now
}

func TestSweepExpiresOverdueTrash(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	f, sweeper, now := newSweeperFixture(t, base)

	old, err := f.gallery.Upload(context.Background(), owner, "old.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	require.NoError(t, f.gallery.Trash(context.Background(), owner, old.Filename))

	*now = base.Add(20 * 24 * time.Hour)
	recent, err := f.gallery.Upload(context.Background(), owner, "recent.jpg", strings.NewReader("b"))
	require.NoError(t, err)
	require.NoError(t, f.gallery.Trash(context.Background(), owner, recent.Filename))

	*now = base.Add(31 * 24 * time.Hour)
	sweeper.Sweep(context.Background())

	_, err = f.photos.GetByFilename(context.Background(), old.Filename)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.False(t, f.media.has(old.Filename))

	// The recent mark is 11 days old and must survive.
	photo, err := f.photos.GetByFilename(context.Background(), recent.Filename)
	require.NoError(t, err)
	assert.Contains(t, photo.TrashBy, owner.ID)
	assert.True(t, f.media.has(recent.Filename))
}

func TestSweepExpiresRecipientGrant(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	f, sweeper, now := newSweeperFixture(t, base)

	photo, err := f.gallery.Upload(context.Background(), owner, "cat.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	require.NoError(t, f.gallery.Share(context.Background(), owner, photo.Filename, recipient.Email))
	require.NoError(t, f.gallery.Trash(context.Background(), recipient, photo.Filename))

	*now = base.Add(31 * 24 * time.Hour)
	sweeper.Sweep(context.Background())

	// Expiry acts as a permanent delete on the recipient's behalf:
	// their grant is released, the owner's copy is untouched.
	stored, err := f.photos.GetByFilename(context.Background(), photo.Filename)
	require.NoError(t, err)
	assert.Empty(t, stored.SharedWith)
	assert.Empty(t, stored.TrashBy)
	assert.True(t, f.media.has(photo.Filename))
}

func TestSweepPurgesOnceGrantsDrain(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	f, sweeper, now := newSweeperFixture(t, base)

	photo, err := f.gallery.Upload(context.Background(), owner, "cat.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	require.NoError(t, f.gallery.Share(context.Background(), owner, photo.Filename, recipient.Email))

	// Owner deletes their copy; the recipient's grant keeps the media
	// alive behind a hidden owner marker.
	require.NoError(t, f.gallery.Trash(context.Background(), owner, photo.Filename))
	require.NoError(t, f.gallery.PermanentlyDelete(context.Background(), owner, photo.Filename))
	require.True(t, f.media.has(photo.Filename))

	// The recipient lets their trashed copy expire instead of deleting.
	require.NoError(t, f.gallery.Trash(context.Background(), recipient, photo.Filename))

	*now = base.Add(31 * 24 * time.Hour)
	sweeper.Sweep(context.Background())

	assert.False(t, f.media.has(photo.Filename))
	_, err = f.photos.GetByFilename(context.Background(), photo.Filename)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSweepSkipsFreshMarks(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	f, sweeper, now := newSweeperFixture(t, base)

	photo, err := f.gallery.Upload(context.Background(), owner, "cat.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	require.NoError(t, f.gallery.Trash(context.Background(), owner, photo.Filename))

	*now = base.Add(24 * time.Hour)
	sweeper.Sweep(context.Background())

	stored, err := f.photos.GetByFilename(context.Background(), photo.Filename)
	require.NoError(t, err)
	assert.Contains(t, stored.TrashBy, owner.ID)
}

func TestSweepHandlesConcurrentMarks(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	f, sweeper, now := newSweeperFixture(t, base)

	photo, err := f.gallery.Upload(context.Background(), owner, "cat.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	require.NoError(t, f.gallery.Share(context.Background(), owner, photo.Filename, recipient.Email))
	require.NoError(t, f.gallery.Trash(context.Background(), owner, photo.Filename))
	require.NoError(t, f.gallery.Trash(context.Background(), recipient, photo.Filename))

	// Both marks are overdue in the same sweep: owner release waits on
	// the recipient's grant, recipient release then drains it, and the
	// photo purges within one pass or the next.
	*now = base.Add(40 * 24 * time.Hour)
	sweeper.Sweep(context.Background())
	sweeper.Sweep(context.Background())

	_, err = f.photos.GetByFilename(context.Background(), photo.Filename)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.False(t, f.media.has(photo.Filename))
}

func TestSweeperDefaults(t *testing.T) {
	sweeper := NewTrashSweeper(nil, nil, 0, 0)
	assert.Equal(t, 30*24*time.Hour, sweeper.retention)
	assert.Equal(t, 24*time.Hour, sweeper.interval)
}
