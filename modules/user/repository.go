package user

import (
	"context"
	"errors"

	"github.com/example/task-tracker/domain/apperr"
	domain "github.com/example/task-tracker/domain/user"
	"gorm.io/gorm"
)

// UserStore is the persistence port for users.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
}

// UserRepository handles user persistence using GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create inserts user. A unique index violation that slipped past the
// application check becomes a duplicate error.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Duplicate("Username or email already exists")
		}
		return apperr.Persistence(err, "failed to create user")
	}
	return nil
}

// Update writes username, email, password digest and names.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	result := r.db.WithContext(ctx).
		Model(user).
		Select("username", "email", "password_hash", "first_name", "last_name", "updated_at").
		Updates(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return apperr.Duplicate("Username or email already exists")
		}
		return apperr.Persistence(result.Error, "failed to update user")
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("User not found with id: %d", user.ID)
	}
	return nil
}

// Delete removes the user with id.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&domain.User{}, id)
	if result.Error != nil {
		return apperr.Persistence(result.Error, "failed to delete user")
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("User not found with id: %d", id)
	}
	return nil
}

// FindByID finds a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found with id: %d", id)
		}
		return nil, apperr.Persistence(err, "failed to find user")
	}
	return &user, nil
}

// FindByUsername finds a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found with username: %s", username)
		}
		return nil, apperr.Persistence(err, "failed to find user")
	}
	return &user, nil
}

// FindAll lists users, newest first.
func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to list users")
	}
	return users, nil
}

// UsernameExists reports whether another user (id != excludeID) holds username.
func (r *UserRepository) UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error) {
	return r.exists(ctx, "username = ?", username, excludeID)
}

// EmailExists reports whether another user (id != excludeID) holds email.
func (r *UserRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, "email = ?", email, excludeID)
}

func (r *UserRepository) exists(ctx context.Context, cond string, value string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&domain.User{}).Where(cond, value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, apperr.Persistence(err, "failed to check user uniqueness")
	}
	return count > 0, nil
}
