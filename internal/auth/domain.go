package auth

import "time"

// Account represents an authenticated account with its claim bag.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	Claims       map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
