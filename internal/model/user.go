package model

import "time"

// User is an authenticated account. PasswordHash travels with the
// stored document; handlers must clear it before a user leaves the API
// boundary.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
