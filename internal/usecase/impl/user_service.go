// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"sync"

	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
	"accounts/internal/domain/service"
	"accounts/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// dummyPassword is hashed once and compared against on logins for unknown emails,
// so both failure paths spend the same hashing time.
const dummyPassword = "accounts-timing-equalizer"

// userService implements the UserUsecase interface.
type userService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateUser opens a new account and signs the caller in.
func (srv *userService) CreateUser(ctx context.Context, input usecase.CreateUserInput) (*usecase.CreateUserOutput, error) {
	srv.log(ctx).Debug("Starting user creation", slog.String("email", input.Email))

	// 1. Reject a taken email before paying for the hash.
	if _, err := srv.userRepo.FindOneByField(ctx, repository.UserFieldEmail, input.Email); err == nil {
		return nil, errors.Wrap(domainerrors.ErrEmailInUse, "user creation failed")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to look up email")
	}

	// 2. Hash the password; the plaintext goes no further.
	passwordHash, err := srv.hasher.Hash(ctx, input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, "user creation failed")
	}

	// 3. Persist. A concurrent signup can still win the race; the unique index catches it.
	created, err := srv.userRepo.Create(ctx, &entity.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, errors.Wrap(domainerrors.ErrEmailInUse, "user creation failed")
		}

		return nil, errors.Wrap(err, "failed to create user")
	}

	// 4. Issue the first token.
	token, claims, err := srv.tokenService.Issue(created.ID, created.Email)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token", slog.Int64("userID", created.ID), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrTokenIssueFailed, "user creation failed")
	}
	srv.log(ctx).Info("User created", slog.Int64("userID", created.ID))

	return &usecase.CreateUserOutput{
		User:        created.Sanitized(),
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt,
	}, nil
}

// Login verifies the credentials and issues a token.
// Unknown email and wrong password are indistinguishable to the caller.
func (srv *userService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting user login", slog.String("email", input.Email))

	user, err := srv.userRepo.FindOneByField(ctx, repository.UserFieldEmail, input.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(err, "failed to look up email")
		}

		srv.burnDummyCheck(ctx, input.Password)
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.String("reason", "unknown email"))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	if !srv.hasher.Check(ctx, input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.String("reason", "password mismatch"))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	token, claims, err := srv.tokenService.Issue(user.ID, user.Email)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token", slog.Int64("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrTokenIssueFailed, "login failed")
	}
	srv.log(ctx).Debug("User logged in successfully", slog.Int64("userID", user.ID))

	return &usecase.LoginOutput{
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt,
	}, nil
}

// burnDummyCheck runs one hash comparison against a throwaway hash.
func (srv *userService) burnDummyCheck(ctx context.Context, password string) {
	srv.dummyOnce.Do(func() {
		hash, err := srv.hasher.Hash(context.WithoutCancel(ctx), dummyPassword)
		if err != nil {
			srv.log(ctx).Warn("Failed to prepare dummy hash", slog.Any("error", err))

			return
		}
		srv.dummyHash = hash
	})

	if srv.dummyHash != "" {
		_ = srv.hasher.Check(ctx, password, srv.dummyHash)
	}
}

// ListUsers returns every account. The caller's own account must still exist.
func (srv *userService) ListUsers(ctx context.Context, principal entity.Principal) ([]*entity.User, error) {
	if _, err := srv.userRepo.FindByID(ctx, principal.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUnauthorized, "principal no longer exists")
		}

		return nil, errors.Wrap(err, "failed to resolve principal")
	}

	users, err := srv.userRepo.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	sanitized := make([]*entity.User, 0, len(users))
	for _, u := range users {
		sanitized = append(sanitized, u.Sanitized())
	}

	return sanitized, nil
}

// GetUser returns the caller's own account.
func (srv *userService) GetUser(ctx context.Context, principal entity.Principal, id int64) (*entity.User, error) {
	if err := srv.authorizeOwner(ctx, principal, id); err != nil {
		return nil, err
	}

	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, srv.mapNotFound(err, "failed to find user")
	}

	return user.Sanitized(), nil
}

// UpdateUser applies a partial update to the caller's own account.
func (srv *userService) UpdateUser(
	ctx context.Context,
	principal entity.Principal,
	id int64,
	input usecase.UpdateUserInput,
) (*entity.User, error) {
	if err := srv.authorizeOwner(ctx, principal, id); err != nil {
		return nil, err
	}

	patch := entity.UserPatch{Name: input.Name, Email: input.Email}
	if patch.IsEmpty() {
		return nil, errors.WithStack(domainerrors.ErrInvalidArgument.WithMessage(usecase.MsgEmptyUpdate))
	}

	existing, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, srv.mapNotFound(err, "failed to find user")
	}

	if patch.Email != nil && *patch.Email != existing.Email {
		other, err := srv.userRepo.FindOneByField(ctx, repository.UserFieldEmail, *patch.Email)
		switch {
		case err == nil && other.ID != id:
			return nil, errors.Wrap(domainerrors.ErrEmailInUse, "user update failed")
		case err != nil && !errors.Is(err, repository.ErrUserNotFound):
			return nil, errors.Wrap(err, "failed to look up email")
		}
	}

	updated, err := srv.userRepo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, errors.Wrap(domainerrors.ErrEmailInUse, "user update failed")
		}

		return nil, srv.mapNotFound(err, "failed to update user")
	}
	srv.log(ctx).Info("User updated", slog.Int64("userID", id))

	return updated.Sanitized(), nil
}

// DeleteUser removes the caller's own account. Tokens already issued stay valid until they expire.
func (srv *userService) DeleteUser(ctx context.Context, principal entity.Principal, id int64) error {
	if err := srv.authorizeOwner(ctx, principal, id); err != nil {
		return err
	}

	if err := srv.userRepo.Delete(ctx, id); err != nil {
		return srv.mapNotFound(err, "failed to delete user")
	}
	srv.log(ctx).Info("User deleted", slog.Int64("userID", id))

	return nil
}

func (srv *userService) authorizeOwner(ctx context.Context, principal entity.Principal, id int64) error {
	if principal.Owns(id) {
		return nil
	}
	srv.log(ctx).Warn("Ownership check failed",
		slog.Int64("principalID", principal.UserID),
		slog.Int64("targetID", id),
	)

	return errors.WithStack(domainerrors.ErrForbidden)
}

func (srv *userService) mapNotFound(err error, msg string) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return errors.Wrap(domainerrors.ErrUserNotFound, msg)
	}

	return errors.Wrap(err, msg)
}
