// Package entity defines the domain entities for the accounts feature.
package entity

import (
	"strings"
	"time"
)

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Username is the login name. It must be unique across all users.
	Username string `gorm:"uniqueIndex;size:150;not null"`

	// Email is optional and not unique; password reset uses the first match.
	Email string `gorm:"index;size:254"`

	// Password is the bcrypt hash. Plaintext is never stored.
	Password string `gorm:"size:255;not null"`

	FirstName string `gorm:"size:150"`
	LastName  string `gorm:"size:150"`

	// IsActive is false while the account waits for email activation.
	IsActive bool `gorm:"not null;default:false"`

	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns the first and last name separated by a space.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
