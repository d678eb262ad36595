// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"accounts/internal/domain/entity"
)

// Port-level errors. Adapters translate their storage-specific failures into these,
// so the application layer never depends on a driver error.
var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateKey is returned when a write would break email uniqueness.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrUnknownField is returned by FindOneByField for a field that is not a lookup key.
	ErrUnknownField = errors.New("unknown user field")
)

// UserField names a column usable with FindOneByField.
type UserField string

const (
	// UserFieldEmail selects users by their exact (case-sensitive) email.
	UserFieldEmail UserField = "email"
	// UserFieldName selects users by their exact name.
	UserFieldName UserField = "name"
)

// IsValid reports whether the field can be used for lookups.
func (f UserField) IsValid() bool {
	switch f {
	case UserFieldEmail, UserFieldName:
		return true
	default:
		return false
	}
}

// UserRepository defines the standard operations for user persistence.
// The application layer depends on this interface, never on a concrete engine.
// Every operation is atomic with respect to a single record.
type UserRepository interface {
	// Create persists a new user and returns it with its assigned ID.
	// Fails with ErrDuplicateKey when the email is already taken; nothing is written in that case.
	Create(ctx context.Context, user *entity.User) (*entity.User, error)

	// FindAll returns every user ordered by ID.
	FindAll(ctx context.Context) ([]*entity.User, error)

	// FindByID retrieves a single user by their ID.
	FindByID(ctx context.Context, id int64) (*entity.User, error)

	// Update applies the non-nil fields of patch to the user with the given ID.
	// Fails with ErrUserNotFound or ErrDuplicateKey.
	Update(ctx context.Context, id int64, patch entity.UserPatch) (*entity.User, error)

	// Delete removes the user with the given ID. Fails with ErrUserNotFound when nothing was removed.
	Delete(ctx context.Context, id int64) error

	// FindOneByField retrieves the first user whose field equals value.
	FindOneByField(ctx context.Context, field UserField, value string) (*entity.User, error)
}
