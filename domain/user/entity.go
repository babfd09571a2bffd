package user

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Phone        string    `gorm:"size:32;not null" json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Claims is the identity carried by a verified token. The user id is
// trusted from the signed payload alone; no lookup happens at auth time.
type Claims struct {
	UserID string `json:"user_id"`
}
