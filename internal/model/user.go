package model

import (
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleWorker = "worker"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`          // "admin" or "worker"
	PasswordHash *string   `db:"password_hash"` // Nullable for accounts provisioned without a password
	CreatedAt    time.Time `db:"created_at"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Caller returns the identity the session layer hands to the document core.
func (u *User) Caller() *Caller {
	return &Caller{ID: u.ID, Role: u.Role}
}

// Caller is an authenticated identity as supplied by the session layer.
// The document core trusts it as given.
type Caller struct {
	ID   string
	Role string
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleWorker
}
