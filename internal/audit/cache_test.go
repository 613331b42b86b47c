package audit

import (
	"testing"
	"time"

	"github.com/accountdoctor/accountdoctor/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCacheHitWithinTTL(t *testing.T) {
	cache := NewCache(24 * time.Hour)
	record := &models.AuditRecord{ID: "1", Username: "corner_cafe"}

	cache.Set("corner_cafe", record)

	got, ok := cache.Get("corner_cafe")
	assert.True(t, ok)
	assert.Equal(t, record, got)
}

func TestCacheMissAfterExpiry(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cache := NewCache(24 * time.Hour)
	cache.now = func() time.Time { return now }

	cache.Set("corner_cafe", &models.AuditRecord{ID: "1"})

	now = now.Add(23 * time.Hour)
	_, ok := cache.Get("corner_cafe")
	assert.True(t, ok, "still fresh at 23h")

	now = now.Add(2 * time.Hour)
	_, ok = cache.Get("corner_cafe")
	assert.False(t, ok, "expired after 25h")
}

func TestCacheInvalidate(t *testing.T) {
	cache := NewCache(24 * time.Hour)
	cache.Set("corner_cafe", &models.AuditRecord{ID: "1"})

	cache.Invalidate("corner_cafe")

	_, ok := cache.Get("corner_cafe")
	assert.False(t, ok)
}

func TestCacheUnknownUsername(t *testing.T) {
	cache := NewCache(24 * time.Hour)
	_, ok := cache.Get("nobody")
	assert.False(t, ok)
}
