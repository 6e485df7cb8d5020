package repository

import (
	"context"

	"github.com/Kosench/shortlink/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormClickRepository struct {
	db *gorm.DB
}

func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

func (r *GormClickRepository) Create(ctx context.Context, click *model.ClickEvent) error {
	if err := r.db.WithContext(ctx).Create(click).Error; err != nil {
		return storageError("failed to record click event", err)
	}
	return nil
}

func (r *GormClickRepository) CountByLink(ctx context.Context, linkID uuid.UUID) (int64, error) {
	var count int64
	if err := r.forLink(ctx, linkID).Count(&count).Error; err != nil {
		return 0, storageError("failed to count click events", err)
	}
	return count, nil
}

// CountByDate группирует клики по календарному дню, новые дни первыми
func (r *GormClickRepository) CountByDate(ctx context.Context, linkID uuid.UUID) ([]model.DateCount, error) {
	var rows []model.DateCount
	err := r.forLink(ctx, linkID).
		Select("CAST(DATE(created_at) AS TEXT) AS day, COUNT(*) AS count").
		Group("DATE(created_at)").
		Order("day DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, storageError("failed to aggregate clicks by date", err)
	}
	return rows, nil
}

func (r *GormClickRepository) CountByUserAgent(ctx context.Context, linkID uuid.UUID) ([]model.UserAgentCount, error) {
	var rows []model.UserAgentCount
	err := r.forLink(ctx, linkID).
		Select("COALESCE(user_agent, '') AS user_agent, COUNT(*) AS count").
		Group("user_agent").
		Scan(&rows).Error
	if err != nil {
		return nil, storageError("failed to aggregate clicks by user agent", err)
	}
	return rows, nil
}

// CountByReferrer считает пустой и отсутствующий referrer как "Direct"
func (r *GormClickRepository) CountByReferrer(ctx context.Context, linkID uuid.UUID) ([]model.ReferrerCount, error) {
	const referrerExpr = "COALESCE(NULLIF(referrer, ''), 'Direct')"

	var rows []model.ReferrerCount
	err := r.forLink(ctx, linkID).
		Select(referrerExpr + " AS referrer, COUNT(*) AS count").
		Group(referrerExpr).
		Order("count DESC, referrer ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, storageError("failed to aggregate clicks by referrer", err)
	}
	return rows, nil
}

func (r *GormClickRepository) forLink(ctx context.Context, linkID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.ClickEvent{}).Where("short_link_id = ?", linkID)
}
