package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a local account. PasswordHash is nil for OAuth-only accounts;
// GoogleID/GitHubID are nil until the matching provider identity is linked.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash *string   `json:"-"`
	ProfilePic   *string   `json:"profilePic,omitempty"`
	GoogleID     *string   `json:"-"`
	GitHubID     *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword reports whether local password login is available.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
