package data

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/askhq/ask/internal"
	"github.com/askhq/ask/internal/server/models"
	"github.com/askhq/ask/uid"
)

func CreateUser(db *gorm.DB, user *models.User) error {
	if len(user.PasswordHash) == 0 {
		return fmt.Errorf("password hash is required")
	}
	return add(db, user)
}

func GetUser(db *gorm.DB, selectors ...SelectorFunc) (*models.User, error) {
	return get[models.User](db, selectors...)
}

func ListUsers(db *gorm.DB, ids []uid.ID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return list[models.User](db, nil, func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN ?", ids)
	})
}

// UserStore looks up and changes user records. Lookups are exact and case
// sensitive, and return internal.ErrNotFound when no user matches.
type UserStore struct {
	DB *gorm.DB
}

func (s UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return GetUser(s.DB.WithContext(ctx), ByUsername(username))
}

func (s UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return GetUser(s.DB.WithContext(ctx), ByEmail(email))
}

func (s UserStore) FindByID(ctx context.Context, id uid.ID) (*models.User, error) {
	return GetUser(s.DB.WithContext(ctx), ByID(id))
}

func (s UserStore) Create(ctx context.Context, user *models.User) error {
	return CreateUser(s.DB.WithContext(ctx), user)
}

func (s UserStore) UpdatePasswordHash(ctx context.Context, user *models.User, hash []byte) error {
	if len(hash) == 0 {
		return fmt.Errorf("password hash is required")
	}

	result := s.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("password_hash", hash)
	if result.Error != nil {
		return handleError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update password of user %v: %w", user.ID, internal.ErrNotFound)
	}

	user.PasswordHash = hash
	return nil
}
