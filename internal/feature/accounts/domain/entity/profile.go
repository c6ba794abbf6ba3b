package entity

import "time"

// Profile holds supplementary per-user data. Exactly one per user.
type Profile struct {
	ID     uint  `gorm:"primaryKey"`
	UserID uint  `gorm:"uniqueIndex;not null"`
	User   *User `gorm:"constraint:OnDelete:CASCADE"`

	// BirthDate is a calendar date; the time part is always zero UTC.
	BirthDate *time.Time `gorm:"type:date"`

	// Avatar is the object storage key of the uploaded image, empty if none.
	Avatar string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
