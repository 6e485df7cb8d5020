package repository

import (
	"context"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormLinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// Create вставляет ссылку одним INSERT. Занятый код возвращается как
// ErrShortCodeExists, источник истины - уникальный индекс short_code.
func (r *GormLinkRepository) Create(ctx context.Context, link *model.ShortLink) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrShortCodeExists
		}
		return storageError("failed to create short link", err)
	}
	return nil
}

func (r *GormLinkRepository) GetByShortCode(ctx context.Context, shortCode string) (*model.ShortLink, error) {
	var link model.ShortLink
	err := r.db.WithContext(ctx).Where("short_code = ?", shortCode).First(&link).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrLinkNotFound
		}
		return nil, storageError("failed to get short link", err)
	}
	return &link, nil
}

func (r *GormLinkRepository) GetByShortCodeAndOwner(ctx context.Context, shortCode string, userID uuid.UUID) (*model.ShortLink, error) {
	var link model.ShortLink
	err := r.db.WithContext(ctx).
		Where("short_code = ? AND user_id = ?", shortCode, userID).
		First(&link).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrLinkNotFound
		}
		return nil, storageError("failed to get short link", err)
	}
	return &link, nil
}

func (r *GormLinkRepository) ExistsByShortCode(ctx context.Context, shortCode string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ShortLink{}).
		Where("short_code = ?", shortCode).
		Count(&count).Error
	if err != nil {
		return false, storageError("failed to check short code existence", err)
	}
	return count > 0, nil
}

func (r *GormLinkRepository) ListByOwner(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.ShortLink, int64, error) {
	var (
		links []model.ShortLink
		total int64
	)

	owned := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.ShortLink{}).Where("user_id = ?", userID)
	}

	if err := owned().Count(&total).Error; err != nil {
		return nil, 0, storageError("failed to count short links", err)
	}

	err := owned().
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&links).Error
	if err != nil {
		return nil, 0, storageError("failed to list short links", err)
	}

	return links, total, nil
}

func (r *GormLinkRepository) IncrementClickCount(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&model.ShortLink{}).
		Where("id = ?", id).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))
	if result.Error != nil {
		return storageError("failed to increment click count", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrLinkNotFound
	}
	return nil
}

// DeleteByOwner удаляет ссылку владельца и ее клики. Чужая ссылка
// неотличима от несуществующей.
func (r *GormLinkRepository) DeleteByOwner(ctx context.Context, id, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link model.ShortLink
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&link).Error; err != nil {
			if isNotFound(err) {
				return apperrors.ErrLinkNotFound
			}
			return err
		}

		if err := tx.Where("short_link_id = ?", link.ID).Delete(&model.ClickEvent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&link).Error
	})

	if err == nil || apperrors.IsNotFound(err) {
		return err
	}
	return storageError("failed to delete short link", err)
}
