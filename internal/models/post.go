package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a blog post written by a User.
type Post struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Title      string    `json:"title" gorm:"size:100;not null"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	DatePosted time.Time `json:"date_posted" gorm:"not null"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	Author     *User     `json:"-" gorm:"foreignKey:UserID"`
}

// TableName keeps the singular table name used by the existing schema.
func (Post) TableName() string {
	return "post"
}

// BeforeCreate stamps DatePosted with the creation time unless the caller set it.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.DatePosted.IsZero() {
		p.DatePosted = time.Now().UTC()
	}
	return nil
}

// AuthorName returns the author's username, or an empty string when the
// author association was not loaded.
func (p *Post) AuthorName() string {
	if p.Author == nil {
		return ""
	}
	return p.Author.Username
}
