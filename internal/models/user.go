package models

import (
	"fmt"
	"strings"
	"time"
)

// UserStatus is the approval state of an account. Only an admin changes it.
type UserStatus string

const (
	UserPending   UserStatus = "pending"
	UserApproved  UserStatus = "approved"
	UserRejected  UserStatus = "rejected"
	UserSuspended UserStatus = "suspended"
)

// ParseUserStatus validates the wire form of a user status.
func ParseUserStatus(s string) (UserStatus, error) {
	status := UserStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown user status %q", s)
	}
	return status, nil
}

func (s UserStatus) Valid() bool {
	switch s {
	case UserPending, UserApproved, UserRejected, UserSuspended:
		return true
	default:
		return false
	}
}

// User represents a registered account.
// Registration creates a pending resident; an admin approves it before login works.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"user_id"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Username is the login name (unique).
	Username string `json:"username"`

	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`

	Role   Role       `json:"role"`
	Status UserStatus `json:"status"`

	// PasswordHash is the bcrypt hash. It never leaves the backend.
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key implements cache.Entity.
func (u User) Key() string { return u.ID }

// Complete reports whether u carries every field a cached user needs.
func (u User) Complete() bool {
	return u.ID != "" && u.Username != "" && u.Role.Valid() && u.Status.Valid()
}

// Viewer returns the identity/role pair for u.
func (u User) Viewer() Viewer {
	return Viewer{ID: u.ID, Role: u.Role}
}
