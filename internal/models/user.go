package models

// User represents a registered blog author.
type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;size:120;not null"`
	Password string `json:"-" gorm:"size:300;not null"` // bcrypt hash, never serialized
	Posts    []Post `json:"-" gorm:"foreignKey:UserID"`
}

// TableName keeps the singular table name used by the existing schema.
func (User) TableName() string {
	return "user"
}
