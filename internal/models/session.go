package models

import "time"

// Session is a persisted server-side session. Data holds the encoded
// session values (user id and email) owned by the session middleware.
type Session struct {
	ID        string     `gorm:"primaryKey;size:64"`
	Data      []byte     `gorm:"not null"`
	ExpiresAt *time.Time `gorm:"index"` // nil means no expiry
}

// TableName keeps the singular naming used by the other tables.
func (Session) TableName() string {
	return "session"
}

// Expired reports whether the session is past its expiry at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
