package impl

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"accounts/internal/domain/entity"
	mockRepo "accounts/internal/mocks/repository"
	mockSvc "accounts/internal/mocks/service"
	"accounts/internal/usecase"
)

// userServiceFixtures holds all test dependencies for user service tests.
type userServiceFixtures struct {
	service      usecase.UserUsecase
	userRepo     *mockRepo.MockUserRepository
	hasher       *mockSvc.MockPasswordHasher
	tokenService *mockSvc.MockTokenService
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestUserService(t *testing.T) userServiceFixtures {
	userRepo := mockRepo.NewMockUserRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)

	service := NewUserService(UserServiceParams{
		UserRepo:     userRepo,
		Hasher:       hasher,
		TokenService: tokenService,
		Logger:       newDiscardLogger(),
	})

	return userServiceFixtures{
		service:      service,
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
	}
}

func ann() *entity.User {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return &entity.User{
		ID:           1,
		Name:         "Ann",
		Email:        "ann@x.com",
		PasswordHash: "hashed-secret1",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func claimsFor(u *entity.User) *entity.TokenClaims {
	iat := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	return &entity.TokenClaims{UserID: u.ID, Email: u.Email, IssuedAt: iat, ExpiresAt: iat.Add(time.Hour)}
}

func ptr[T any](v T) *T { return &v }
