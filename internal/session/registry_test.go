package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mlm20/terra-health-archetypes/internal"
)

func newTestRegistry(maxAge time.Duration) (*Registry, *time.Time) {
	r := NewRegistry(maxAge, internal.NewNopLogger())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestInitializeIsIdempotent(t *testing.T) {
	r, now := newTestRegistry(24 * time.Hour)

	r.Initialize("s1")
	created := r.entries["s1"].CreatedAt

	*now = now.Add(5 * time.Minute)
	r.Initialize("s1")

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, created, r.entries["s1"].CreatedAt)
}

func TestStoreOverwritesDifferingAssociation(t *testing.T) {
	r, _ := newTestRegistry(24 * time.Hour)

	r.Initialize("s1")
	r.Store("s1", "terra-user-a")
	r.Store("s1", "terra-user-b")

	got, ok := r.Get("s1")
	assert.True(t, ok)
	assert.Equal(t, "terra-user-b", got)
}

func TestStoreCreatesMissingEntry(t *testing.T) {
	r, _ := newTestRegistry(24 * time.Hour)

	r.Store("s-new", "terra-user-a")

	got, ok := r.Get("s-new")
	assert.True(t, ok)
	assert.Equal(t, "terra-user-a", got)
}

func TestGetExpiresAndEvicts(t *testing.T) {
	r, now := newTestRegistry(24 * time.Hour)

	r.Initialize("s1")
	r.Store("s1", "terra-user-a")

	*now = now.Add(24*time.Hour + time.Minute)

	_, ok := r.Get("s1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len(), "expired entry should be evicted on access")
}

func TestGetRefreshesTimestamp(t *testing.T) {
	r, now := newTestRegistry(24 * time.Hour)

	r.Store("s1", "terra-user-a")

	// Touch just before expiry, then check the refresh carried it forward.
	*now = now.Add(23 * time.Hour)
	_, ok := r.Get("s1")
	assert.True(t, ok)

	*now = now.Add(23 * time.Hour)
	got, ok := r.Get("s1")
	assert.True(t, ok)
	assert.Equal(t, "terra-user-a", got)
}

func TestGetUnassociatedSession(t *testing.T) {
	r, _ := newTestRegistry(24 * time.Hour)

	r.Initialize("s1")

	got, ok := r.Get("s1")
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestDelete(t *testing.T) {
	r, _ := newTestRegistry(24 * time.Hour)

	r.Store("s1", "terra-user-a")
	r.Delete("s1")
	r.Delete("s1") // no-op

	_, ok := r.Get("s1")
	assert.False(t, ok)
}

func TestEvictExpiredSweepsOnlyStale(t *testing.T) {
	r, now := newTestRegistry(24 * time.Hour)

	r.Store("old", "terra-user-a")
	*now = now.Add(25 * time.Hour)
	r.Store("fresh", "terra-user-b")

	assert.Equal(t, 1, r.evictExpired())
	assert.Equal(t, 1, r.Len())

	got, ok := r.Get("fresh")
	assert.True(t, ok)
	assert.Equal(t, "terra-user-b", got)
}
