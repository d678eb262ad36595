// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// User is the core entity in the system, representing a single account.
type User struct {
	ID           int64     // Stable identifier assigned by storage at creation. Never reused.
	Name         string    // Display name, 1..100 characters.
	Email        string    // Login identifier. Unique across all users, compared case-sensitively.
	PasswordHash string    // Opaque bcrypt digest. Must never leave the domain service.
	CreatedAt    time.Time // Timestamp of when this account was created.
	UpdatedAt    time.Time // Timestamp of the last modification to this account.
}

// Sanitized returns a copy of the user without credential material.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}

	clone := *u
	clone.PasswordHash = ""

	return &clone
}

// UserPatch carries a partial update. Nil fields are left untouched.
type UserPatch struct {
	Name  *string
	Email *string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil
}
