package repository

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrUserExists
		}
		return storageError("failed to create user", err)
	}
	return nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

// GetByEmailOrUsername ищет пользователя одним запросом по email или username
func (r *GormUserRepository) GetByEmailOrUsername(ctx context.Context, login string) (*model.User, error) {
	return r.first(ctx, "email = ? OR username = ?", strings.ToLower(login), login)
}

func (r *GormUserRepository) GetByProvider(ctx context.Context, provider, providerID string) (*model.User, error) {
	return r.first(ctx, "provider = ? AND provider_id = ?", provider, providerID)
}

func (r *GormUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ? OR username = ?", strings.ToLower(email), username).
		Count(&count).Error
	if err != nil {
		return false, storageError("failed to check user existence", err)
	}
	return count > 0, nil
}

func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, storageError("failed to check username", err)
	}
	return count > 0, nil
}

func (r *GormUserRepository) Update(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrIdentityTaken
		}
		return storageError("failed to update user", err)
	}
	return nil
}

// Delete удаляет пользователя вместе с его ссылками и кликами
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		linkIDs := tx.Model(&model.ShortLink{}).Select("id").Where("user_id = ?", id)

		if err := tx.Where("short_link_id IN (?)", linkIDs).Delete(&model.ClickEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.ShortLink{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&model.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrUserNotFound
		}
		return nil
	})

	if err == nil || apperrors.IsNotFound(err) {
		return err
	}
	return storageError("failed to delete user", err)
}

func (r *GormUserRepository) first(ctx context.Context, query string, args ...any) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storageError(fmt.Sprintf("failed to get user (%s)", query), err)
	}
	return &user, nil
}
