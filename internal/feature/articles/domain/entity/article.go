// Package entity defines the article entity as seen by the accounts pages.
// Articles are written by the blog feature; this service only reads them.
package entity

import "time"

// Article is a blog post written by a user.
type Article struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Text      string    `gorm:"type:text" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
