package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UploadLimiter tracks per-viewer upload rates with expiring entries.
type UploadLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

// NewUploadLimiter constructs a per-viewer limiter allowing up to
// perMinute uploads per minute with the given burst capacity.
func NewUploadLimiter(perMinute, burst int) *UploadLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &UploadLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		ttl:     10 * time.Minute,
		now:     time.Now,
	}
}

// Allow reports whether the viewer may perform another upload now.
func (l *UploadLimiter) Allow(viewerID string) bool {
	if viewerID == "" {
		viewerID = "unknown"
	}

	now := l.now()

	l.mu.Lock()
	entry, ok := l.entries[viewerID]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[viewerID] = entry
	}
	entry.lastSeen = now
	for id, e := range l.entries {
		if now.Sub(e.lastSeen) > l.ttl {
			delete(l.entries, id)
		}
	}
	l.mu.Unlock()

	return entry.limiter.Allow()
}

// RateLimitUploads rejects uploads exceeding the viewer's rate budget.
func RateLimitUploads(limiter *UploadLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer := GetViewer(r.Context())
			if !limiter.Allow(viewer.ID) {
				respondError(w, "Upload rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
