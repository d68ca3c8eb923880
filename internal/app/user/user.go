/*
Package user contains the user identity model and its store adapter.

It defines the basic representation of a registered account within the chat
system and the PostgreSQL-backed operations the REST facade and Session
Manager consume.
*/
package user

import (
	"time"
)

// User represents a registered account. The password hash never serializes.
type User struct {
	// ID is the store-generated unique identifier for the user.
	ID string `json:"id"`

	// Username is the unique account name.
	Username string `json:"username"`

	// Email is the unique account email address.
	Email string `json:"email"`

	// IsActive reports whether the account may authenticate.
	IsActive bool `json:"is_active"`

	// IsAdmin reports whether the account has administrative rights.
	IsAdmin bool `json:"is_admin"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`

	PasswordHash string `json:"-"`
}
