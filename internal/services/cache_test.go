package services

import (
	"testing"
	"time"

	"photo-vault-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingCacheGetSet(t *testing.T) {
	cache := NewListingCache(time.Minute)
	viewer := models.Viewer{ID: "u1", Email: "u1@example.com"}

	_, ok := cache.Get(viewer.ID)
	assert.False(t, ok)

	listing := []models.PhotoSummary{{Name: "cat.jpg"}}
	cache.Set(viewer, listing)

	got, ok := cache.Get(viewer.ID)
	require.True(t, ok)
	assert.Equal(t, listing, got)
}

func TestListingCacheExpiry(t *testing.T) {
	cache := NewListingCache(time.Minute)
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	now := base
	cache.now = func() time.Time { return now }

	viewer := models.Viewer{ID: "u1"}
	cache.Set(viewer, []models.PhotoSummary{{Name: "cat.jpg"}})

	_, ok := cache.Get(viewer.ID)
	require.True(t, ok)

	now = base.Add(2 * time.Minute)
	_, ok = cache.Get(viewer.ID)
	assert.False(t, ok, "expected stale entry to read as a miss")
}

func TestListingCacheInvalidate(t *testing.T) {
	cache := NewListingCache(time.Minute)
	viewer := models.Viewer{ID: "u1", Email: "u1@example.com"}
	cache.Set(viewer, nil)

	cache.Invalidate(viewer.ID)
	_, ok := cache.Get(viewer.ID)
	assert.False(t, ok)
}

func TestListingCacheInvalidateByEmail(t *testing.T) {
	cache := NewListingCache(time.Minute)
	viewer := models.Viewer{ID: "u1", Email: "u1@example.com"}
	cache.Set(viewer, []models.PhotoSummary{{Name: "cat.jpg"}})

	// Unknown emails are a harmless no-op.
	cache.InvalidateEmail("nobody@example.com")
	_, ok := cache.Get(viewer.ID)
	require.True(t, ok)

	cache.InvalidateEmail(viewer.Email)
	_, ok = cache.Get(viewer.ID)
	assert.False(t, ok)
}

func TestListingCacheNilIsDisabled(t *testing.T) {
	var cache *ListingCache

	_, ok := cache.Get("u1")
	assert.False(t, ok)

	// None of these may panic on a disabled cache.
	cache.Set(models.Viewer{ID: "u1"}, nil)
	cache.Invalidate("u1")
	cache.InvalidateEmail("u1@example.com")
}

func TestListingCacheDefaultTTL(t *testing.T) {
	cache := NewListingCache(0)
	assert.Equal(t, 5*time.Minute, cache.ttl)
}
