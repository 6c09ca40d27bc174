package services

import (
	"sync"
	"time"

	"photo-vault-backend/internal/models"
)

type cacheEntry struct {
	listing []models.PhotoSummary
	email   string
	expires time.Time
}

// ListingCache is a viewer-keyed TTL cache of computed gallery listings.
//
// It is purely a performance layer: a miss or expired entry means the
// caller recomputes from the record store. Share mutations only know the
// affected recipient by email, so the cache keeps an email index alongside
// the viewer-ID keyed entries; recipients who never listed are simply
// absent.
type ListingCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	byEmail map[string]string
}

// NewListingCache returns a cache whose entries expire after ttl.
func NewListingCache(ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ListingCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
		byEmail: make(map[string]string),
	}
}

// Get returns the cached listing for the viewer, if present and fresh.
func (c *ListingCache) Get(viewerID string) ([]models.PhotoSummary, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[viewerID]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expires) {
		return nil, false
	}
	return entry.listing, true
}

// Set stores the viewer's computed listing.
func (c *ListingCache) Set(viewer models.Viewer, listing []models.PhotoSummary) {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.entries[viewer.ID] = cacheEntry{
		listing: listing,
		email:   viewer.Email,
		expires: c.now().Add(c.ttl),
	}
	if viewer.Email != "" {
		c.byEmail[viewer.Email] = viewer.ID
	}
	c.mu.Unlock()
}

// Invalidate drops the cached listing for the given viewer ID.
func (c *ListingCache) Invalidate(viewerID string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	if entry, ok := c.entries[viewerID]; ok {
		if entry.email != "" {
			delete(c.byEmail, entry.email)
		}
		delete(c.entries, viewerID)
	}
	c.mu.Unlock()
}

// InvalidateEmail drops the cached listing for the viewer last seen with
// the given email. Unknown emails are a harmless no-op.
func (c *ListingCache) InvalidateEmail(email string) {
	if c == nil || email == "" {
		return
	}

	c.mu.Lock()
	if id, ok := c.byEmail[email]; ok {
		delete(c.entries, id)
		delete(c.byEmail, email)
	}
	c.mu.Unlock()
}
