// Package memory contains an in-process implementation of the persistence layer.
// It is the reference adapter for the repository port and backs the "memory" storage driver.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"accounts/internal/domain/entity"
	"accounts/internal/domain/repository"

	"github.com/pkg/errors"
)

// userRepository keeps users in a map guarded by a single RWMutex.
// The email index enforces uniqueness; IDs come from a counter that only grows.
type userRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*entity.User
	byEmail map[string]int64
	now     func() time.Time
}

// NewUserRepository is the constructor for the in-memory userRepository.
func NewUserRepository() repository.UserRepository {
	return newUserRepository(time.Now)
}

func newUserRepository(now func() time.Time) *userRepository {
	return &userRepository{
		byID:    make(map[int64]*entity.User),
		byEmail: make(map[string]int64),
		now:     now,
	}
}

// Create stores a copy of user under a fresh ID.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, taken := repo.byEmail[user.Email]; taken {
		return nil, errors.WithStack(repository.ErrDuplicateKey)
	}

	repo.nextID++
	ts := repo.now()

	stored := *user
	stored.ID = repo.nextID
	stored.CreatedAt = ts
	stored.UpdatedAt = ts

	repo.byID[stored.ID] = &stored
	repo.byEmail[stored.Email] = stored.ID

	return clone(&stored), nil
}

// FindAll returns copies of every user ordered by ID.
func (repo *userRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	users := make([]*entity.User, 0, len(repo.byID))
	for _, u := range repo.byID {
		users = append(users, clone(u))
	}
	slices.SortFunc(users, func(a, b *entity.User) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return users, nil
}

// FindByID retrieves a copy of the user with the given ID.
func (repo *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	u, ok := repo.byID[id]
	if !ok {
		return nil, errors.WithStack(repository.ErrUserNotFound)
	}

	return clone(u), nil
}

// Update applies patch atomically: either every field changes or none does.
func (repo *userRepository) Update(ctx context.Context, id int64, patch entity.UserPatch) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	u, ok := repo.byID[id]
	if !ok {
		return nil, errors.WithStack(repository.ErrUserNotFound)
	}

	if patch.Email != nil && *patch.Email != u.Email {
		if owner, taken := repo.byEmail[*patch.Email]; taken && owner != id {
			return nil, errors.WithStack(repository.ErrDuplicateKey)
		}
		delete(repo.byEmail, u.Email)
		u.Email = *patch.Email
		repo.byEmail[u.Email] = id
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	u.UpdatedAt = repo.now()

	return clone(u), nil
}

// Delete removes the user and frees their email.
func (repo *userRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	u, ok := repo.byID[id]
	if !ok {
		return errors.WithStack(repository.ErrUserNotFound)
	}

	delete(repo.byEmail, u.Email)
	delete(repo.byID, id)

	return nil
}

// FindOneByField looks a user up by email (indexed) or by name (scan, lowest ID wins).
func (repo *userRepository) FindOneByField(ctx context.Context, field repository.UserField, value string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	if !field.IsValid() {
		return nil, errors.Wrapf(repository.ErrUnknownField, "field %q", field)
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	switch field {
	case repository.UserFieldEmail:
		if id, ok := repo.byEmail[value]; ok {
			return clone(repo.byID[id]), nil
		}
	case repository.UserFieldName:
		var found *entity.User
		for _, u := range repo.byID {
			if u.Name == value && (found == nil || u.ID < found.ID) {
				found = u
			}
		}
		if found != nil {
			return clone(found), nil
		}
	}

	return nil, errors.WithStack(repository.ErrUserNotFound)
}

func clone(u *entity.User) *entity.User {
	c := *u

	return &c
}
