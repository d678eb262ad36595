// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"accounts/internal/domain/entity"
)

// --- Input DTOs ---

// CreateUserInput defines the data required to open a new account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateUserInput carries a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Name  *string
	Email *string
}

// --- Output DTOs ---

// CreateUserOutput returns the new account (without its password hash) and a bearer token.
type CreateUserOutput struct {
	User        *entity.User
	AccessToken string
	ExpiresAt   time.Time
}

// LoginOutput returns the bearer token issued after a successful login.
type LoginOutput struct {
	AccessToken string
	ExpiresAt   time.Time
}

// UserUsecase defines the interface for user-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
// Operations that target an account take the authenticated principal and enforce ownership.
type UserUsecase interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*CreateUserOutput, error)
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)
	ListUsers(ctx context.Context, principal entity.Principal) ([]*entity.User, error)
	GetUser(ctx context.Context, principal entity.Principal, id int64) (*entity.User, error)
	UpdateUser(ctx context.Context, principal entity.Principal, id int64, input UpdateUserInput) (*entity.User, error)
	DeleteUser(ctx context.Context, principal entity.Principal, id int64) error
}
