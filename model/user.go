package model

import (
	"time"
)

// User is the authenticated account profile. The password is never
// present on the wire.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
