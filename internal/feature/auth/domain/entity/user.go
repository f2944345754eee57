// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Email is the login key. It is unique and compared case-sensitively.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// PasswordHash is the bcrypt hash of the user's password. Plaintext is never stored.
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
