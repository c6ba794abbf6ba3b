package entity

import "time"

// TokenType tags what an AuthToken may be used for.
type TokenType string

const (
	// TokenTypeRegister confirms a new account's email address.
	TokenTypeRegister TokenType = "register"
	// TokenTypePasswordReset allows setting a new password without the old one.
	TokenTypePasswordReset TokenType = "password_reset"
)

const (
	// DefaultTokenLifeDays is the validity of a token when none is given.
	DefaultTokenLifeDays = 7
	// PasswordResetTokenLifeDays is the shorter validity of reset tokens.
	PasswordResetTokenLifeDays = 3
)

// AuthToken is a single-use, time-limited capability sent by email.
type AuthToken struct {
	ID    uint   `gorm:"primaryKey"`
	Token string `gorm:"uniqueIndex;size:36;not null"`

	UserID uint  `gorm:"index;not null"`
	User   *User `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	LifeDays  int       `gorm:"not null;default:7"`
	Type      TokenType `gorm:"size:20;not null;default:register"`
}

// ExpiresAt returns the last instant at which the token is still alive.
func (t *AuthToken) ExpiresAt() time.Time {
	return t.CreatedAt.AddDate(0, 0, t.LifeDays)
}

// IsAlive reports whether created_at + life_days >= now.
func (t *AuthToken) IsAlive(now time.Time) bool {
	return !t.ExpiresAt().Before(now)
}
