package repositories

import (
	"context"
	"testing"
	"time"

	"blog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ fiber.Storage = (*GORMSessionStorage)(nil)

// newTestStorage returns a storage whose clock is controlled by the returned pointer.
func newTestStorage(t *testing.T) (*GORMSessionStorage, *time.Time) {
	t.Helper()
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewGORMSessionStorage(newTestDB(t))
	s.now = func() time.Time { return clock }
	return s, &clock
}

func TestGORMSessionStorageSetGet(t *testing.T) {
	s, _ := newTestStorage(t)

	val, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	val, err = s.Get("")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, s.Set("abc", []byte("first"), time.Hour))
	val, err = s.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), val)

	// Overwrite in place
	require.NoError(t, s.Set("abc", []byte("second"), time.Hour))
	val, err = s.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), val)

	// Empty keys are ignored
	require.NoError(t, s.Set("", []byte("x"), 0))
	require.NoError(t, s.Set("empty", nil, 0))
	val, err = s.Get("empty")
	require.NoError(t, err)
	assert.Nil(t, val)

	// An empty value clears what was stored before
	require.NoError(t, s.Set("abc", nil, time.Hour))
	val, err = s.Get("abc")
	require.NoError(t, err)
	assert.Nil(t, val)

	var count int64
	require.NoError(t, s.db.Model(&models.Session{}).Where("id = ?", "abc").Count(&count).Error)
	assert.Zero(t, count)
}

func TestGORMSessionStorageExpiry(t *testing.T) {
	s, clock := newTestStorage(t)

	require.NoError(t, s.Set("short", []byte("a"), time.Minute))
	require.NoError(t, s.Set("long", []byte("b"), time.Hour))
	require.NoError(t, s.Set("forever", []byte("c"), 0))

	*clock = clock.Add(2 * time.Minute)

	val, err := s.Get("short")
	require.NoError(t, err)
	assert.Nil(t, val, "expired sessions read as missing")

	val, err = s.Get("long")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), val)

	n, err := s.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var count int64
	require.NoError(t, s.db.Model(&models.Session{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	*clock = clock.Add(24 * 365 * time.Hour)
	n, err = s.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	val, err = s.Get("forever")
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), val)
}

func TestGORMSessionStorageDeleteAndReset(t *testing.T) {
	s, _ := newTestStorage(t)

	require.NoError(t, s.Set("a", []byte("1"), time.Hour))
	require.NoError(t, s.Set("b", []byte("2"), time.Hour))

	require.NoError(t, s.Delete("a"))
	require.NoError(t, s.Delete("a"), "deleting a missing key is not an error")
	val, err := s.Get("a")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, s.Reset())
	val, err = s.Get("b")
	require.NoError(t, err)
	assert.Nil(t, val)

	assert.NoError(t, s.Close())
}

func TestGORMSessionStorageGC(t *testing.T) {
	s, clock := newTestStorage(t)
	require.NoError(t, s.Set("stale", []byte("x"), time.Second))
	*clock = clock.Add(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartGC(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		var count int64
		if err := s.db.Model(&models.Session{}).Count(&count).Error; err != nil {
			return false
		}
		return count == 0
	}, 2*time.Second, 20*time.Millisecond)
}
