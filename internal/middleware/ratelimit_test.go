package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadLimiterBurst(t *testing.T) {
	limiter := NewUploadLimiter(1, 2)

	assert.True(t, limiter.Allow("u1"))
	assert.True(t, limiter.Allow("u1"))
	assert.False(t, limiter.Allow("u1"), "expected burst to be exhausted")

	// Other viewers have their own budget.
	assert.True(t, limiter.Allow("u2"))
}

func TestUploadLimiterDefaults(t *testing.T) {
	limiter := NewUploadLimiter(0, 0)
	assert.True(t, limiter.Allow(""))
	assert.False(t, limiter.Allow(""))
}
