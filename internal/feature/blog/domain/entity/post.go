// Package entity defines the domain entities for the blog feature.
package entity

import "time"

// Post is a blog post owned by exactly one user.
type Post struct {
	ID      uint   `gorm:"primaryKey"`
	Title   string `gorm:"size:255;not null"`
	Content string `gorm:"type:text;not null"`

	// AuthorID is set from the authenticated identity at creation and never changes.
	AuthorID uint `gorm:"not null;index"`

	// Author is resolved by the repository on reads; it is not a column.
	Author Author `gorm:"-"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Author is the public view of a post's owner.
type Author struct {
	ID    uint
	Email string
}

// IsOwnedBy reports whether userID is the post's author.
func (p *Post) IsOwnedBy(userID uint) bool {
	return userID != 0 && p.AuthorID == userID
}
