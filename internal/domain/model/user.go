package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Not exposed
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser holds the fields a backend needs to create a user.
// ID and CreatedAt are assigned by the owning backend.
type NewUser struct {
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
}
