// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
	"accounts/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements the repository.UserRepository port using GORM.
// Email uniqueness is enforced by the users_email_key unique constraint.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a repository.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new row; the database assigns the ID and timestamps.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return nil, errors.Wrap(repository.ErrDuplicateKey, "email already exists")
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	return toUserDomain(userM), nil
}

// FindAll returns every user ordered by ID.
func (repo *userRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	var rows []*model.UserModel
	if err := repo.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list users")
	}

	users := make([]*entity.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, toUserDomain(row))
	}

	return users, nil
}

// FindByID retrieves a single user by primary key.
func (repo *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	return repo.findOne(ctx, repo.db.WithContext(ctx).Where("id = ?", id), "failed to find user by id")
}

// Update applies the patch and reads the row back inside one transaction.
func (repo *userRepository) Update(ctx context.Context, id int64, patch entity.UserPatch) (*entity.User, error) {
	values := make(map[string]any, 2)
	if patch.Name != nil {
		values["name"] = *patch.Name
	}
	if patch.Email != nil {
		values["email"] = *patch.Email
	}
	if len(values) == 0 {
		return repo.FindByID(ctx, id)
	}

	var updated *entity.User
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.UserModel{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			if isUniqueConstraintViolation(res.Error) {
				return errors.Wrap(repository.ErrDuplicateKey, "email already exists")
			}

			return domainerrors.NewDatabaseExecuteError(res.Error, "failed to update user")
		}
		if res.RowsAffected == 0 {
			return errors.WithStack(repository.ErrUserNotFound)
		}

		u, err := repo.findOne(ctx, tx.Where("id = ?", id), "failed to reload updated user")
		if err != nil {
			return err
		}
		updated = u

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete hard-deletes the row.
func (repo *userRepository) Delete(ctx context.Context, id int64) error {
	res := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.UserModel{})
	if res.Error != nil {
		return domainerrors.NewDatabaseExecuteError(res.Error, "failed to delete user")
	}
	if res.RowsAffected == 0 {
		return errors.WithStack(repository.ErrUserNotFound)
	}

	return nil
}

// FindOneByField retrieves the lowest-ID user whose column equals value.
func (repo *userRepository) FindOneByField(ctx context.Context, field repository.UserField, value string) (*entity.User, error) {
	if !field.IsValid() {
		return nil, errors.Wrapf(repository.ErrUnknownField, "field %q", field)
	}

	query := repo.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: string(field)}, Value: value})

	return repo.findOne(ctx, query, "failed to find user by "+string(field))
}

func (repo *userRepository) findOne(_ context.Context, query *gorm.DB, details string) (*entity.User, error) {
	var userM model.UserModel
	if err := query.First(&userM).Error; err != nil {
		// If the error is 'record not found', return the port error.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(repository.ErrUserNotFound)
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, details)
	}

	return toUserDomain(&userM), nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:           data.ID,
		Name:         data.Name,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:           data.ID,
		Name:         data.Name,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
	}
}
