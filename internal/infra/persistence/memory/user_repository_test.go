package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"accounts/internal/domain/entity"
	"accounts/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func seed(t *testing.T, repo repository.UserRepository, name, email string) *entity.User {
	t.Helper()

	u, err := repo.Create(context.Background(), &entity.User{Name: name, Email: email, PasswordHash: "hash-" + name})
	require.NoError(t, err)

	return u
}

func TestUserRepository_CreateAssignsIncreasingIDs(t *testing.T) {
	repo := NewUserRepository()

	ann := seed(t, repo, "Ann", "ann@x.com")
	bob := seed(t, repo, "Bob", "bob@x.com")

	assert.Equal(t, int64(1), ann.ID)
	assert.Equal(t, int64(2), bob.ID)
	assert.False(t, ann.CreatedAt.IsZero())
}

func TestUserRepository_IDsAreNeverReused(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	ann := seed(t, repo, "Ann", "ann@x.com")
	require.NoError(t, repo.Delete(ctx, ann.ID))

	again := seed(t, repo, "Ann", "ann@x.com")
	assert.Greater(t, again.ID, ann.ID)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	seed(t, repo, "Ann", "ann@x.com")

	_, err := repo.Create(ctx, &entity.User{Name: "Other", Email: "ann@x.com"})
	assert.True(t, errors.Is(err, repository.ErrDuplicateKey))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUserRepository_EmailIsCaseSensitive(t *testing.T) {
	repo := NewUserRepository()
	seed(t, repo, "Ann", "ann@x.com")

	_, err := repo.Create(context.Background(), &entity.User{Name: "Ann2", Email: "Ann@x.com"})
	assert.NoError(t, err)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	ann := seed(t, repo, "Ann", "ann@x.com")

	ann.Name = "mutated"

	stored, err := repo.FindByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", stored.Name)
}

func TestUserRepository_FindByIDNotFound(t *testing.T) {
	repo := NewUserRepository()

	_, err := repo.FindByID(context.Background(), 99)
	assert.True(t, errors.Is(err, repository.ErrUserNotFound))
}

func TestUserRepository_FindAllOrderedByID(t *testing.T) {
	repo := NewUserRepository()
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"} {
		seed(t, repo, "u", email)
	}

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, u := range all {
		assert.Equal(t, int64(i+1), u.ID)
	}
}

func TestUserRepository_Update(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newUserRepository(func() time.Time { return clock })
	ctx := context.Background()
	ann := seed(t, repo, "Ann", "ann@x.com")

	clock = clock.Add(time.Minute)
	updated, err := repo.Update(ctx, ann.ID, entity.UserPatch{Email: ptr("anna@x.com")})
	require.NoError(t, err)
	assert.Equal(t, "Ann", updated.Name)
	assert.Equal(t, "anna@x.com", updated.Email)
	assert.Equal(t, clock, updated.UpdatedAt)

	// The old email is free again, the new one is taken.
	_, err = repo.FindOneByField(ctx, repository.UserFieldEmail, "ann@x.com")
	assert.True(t, errors.Is(err, repository.ErrUserNotFound))
	found, err := repo.FindOneByField(ctx, repository.UserFieldEmail, "anna@x.com")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, found.ID)
}

func TestUserRepository_UpdateConflictIsAtomic(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	ann := seed(t, repo, "Ann", "ann@x.com")
	seed(t, repo, "Bob", "bob@x.com")

	_, err := repo.Update(ctx, ann.ID, entity.UserPatch{Name: ptr("Anna"), Email: ptr("bob@x.com")})
	assert.True(t, errors.Is(err, repository.ErrDuplicateKey))

	stored, err := repo.FindByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", stored.Name)
	assert.Equal(t, "ann@x.com", stored.Email)
}

func TestUserRepository_UpdateSameEmailIsNoConflict(t *testing.T) {
	repo := NewUserRepository()
	ann := seed(t, repo, "Ann", "ann@x.com")

	updated, err := repo.Update(context.Background(), ann.ID, entity.UserPatch{Email: ptr("ann@x.com")})
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", updated.Email)
}

func TestUserRepository_UpdateNotFound(t *testing.T) {
	repo := NewUserRepository()

	_, err := repo.Update(context.Background(), 5, entity.UserPatch{Name: ptr("x")})
	assert.True(t, errors.Is(err, repository.ErrUserNotFound))
}

func TestUserRepository_Delete(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	ann := seed(t, repo, "Ann", "ann@x.com")

	require.NoError(t, repo.Delete(ctx, ann.ID))

	_, err := repo.FindByID(ctx, ann.ID)
	assert.True(t, errors.Is(err, repository.ErrUserNotFound))

	err = repo.Delete(ctx, ann.ID)
	assert.True(t, errors.Is(err, repository.ErrUserNotFound))
}

func TestUserRepository_FindOneByField(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	seed(t, repo, "Ann", "ann@x.com")
	second := seed(t, repo, "Bob", "bob@x.com")
	seed(t, repo, "Bob", "bob2@x.com")

	byName, err := repo.FindOneByField(ctx, repository.UserFieldName, "Bob")
	require.NoError(t, err)
	assert.Equal(t, second.ID, byName.ID)

	_, err = repo.FindOneByField(ctx, repository.UserField("password_hash"), "x")
	assert.True(t, errors.Is(err, repository.ErrUnknownField))
}

func TestUserRepository_ConcurrentCreatesKeepEmailUnique(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Create(ctx, &entity.User{Name: "Ann", Email: "ann@x.com"}); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestUserRepository_CancelledContext(t *testing.T) {
	repo := NewUserRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
