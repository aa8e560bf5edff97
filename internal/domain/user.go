package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no user matches the given id or lookup fields.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when an insert or update would violate the
	// unique index on email.
	ErrDuplicateEmail = errors.New("email already registered")
)

// User is the sole persisted entity. The store assigns ID on create and it is
// immutable afterwards; email is unique across all records.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
