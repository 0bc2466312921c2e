package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"blog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMSessionStorage persists fiber sessions in the session table.
// It satisfies the fiber.Storage interface.
type GORMSessionStorage struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGORMSessionStorage creates a new instance of GORMSessionStorage.
func NewGORMSessionStorage(db *gorm.DB) *GORMSessionStorage {
	return &GORMSessionStorage{
		db:  db,
		now: time.Now,
	}
}

// Get returns the stored value for key, or nil when the key is missing or expired.
func (s *GORMSessionStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	var sess models.Session
	if err := s.db.First(&sess, "id = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if sess.Expired(s.now()) {
		return nil, nil
	}
	return sess.Data, nil
}

// Set stores val under key. A zero exp means the entry never expires and an
// empty val removes the entry.
func (s *GORMSessionStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" {
		return nil
	}
	if len(val) == 0 {
		return s.Delete(key)
	}
	sess := models.Session{ID: key, Data: val}
	if exp > 0 {
		expiresAt := s.now().Add(exp).UTC()
		sess.ExpiresAt = &expiresAt
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at"}),
	}).Create(&sess).Error
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *GORMSessionStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	if err := s.db.Delete(&models.Session{}, "id = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Reset removes every stored session.
func (s *GORMSessionStorage) Reset() error {
	if err := s.db.Where("1 = 1").Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to reset sessions: %w", err)
	}
	return nil
}

// Close is a no-op; the database handle is owned by the caller.
func (s *GORMSessionStorage) Close() error {
	return nil
}

// DeleteExpired purges expired sessions and returns how many were removed.
func (s *GORMSessionStorage) DeleteExpired() (int64, error) {
	res := s.db.Where("expires_at IS NOT NULL AND expires_at <= ?", s.now().UTC()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// StartGC purges expired sessions every interval until ctx is cancelled.
func (s *GORMSessionStorage) StartGC(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.DeleteExpired()
				if err != nil {
					slog.Error("Session GC failed", "error", err)
					continue
				}
				if n > 0 {
					slog.Debug("Session GC purged expired sessions", "count", n)
				}
			}
		}
	}()
}
