package models

import "time"

// UserRole is the coarse permission level attached to a user.
type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleDeveloper UserRole = "developer"
	UserRoleTester    UserRole = "tester"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleDeveloper, UserRoleTester:
		return true
	}
	return false
}

// User represents an account in the tracker.
// It maps to the `users` table. PasswordHash never leaves the process.
type User struct {
	ID           int64     `db:"id" json:"UserID"`
	Username     string    `db:"username" json:"Username"`
	Email        string    `db:"email" json:"Email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"Role"`
	CreatedAt    time.Time `db:"created_at" json:"CreatedAt"`
}

// CreateUser holds the validated fields for a new user.
type CreateUser struct {
	Username     string
	Email        string
	PasswordHash string
	Role         UserRole
}

// UpdateUser is a partial update of the profile fields. Nil fields are left unchanged.
type UpdateUser struct {
	Username *string
	Email    *string
}
