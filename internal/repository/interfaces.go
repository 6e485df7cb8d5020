package repository

import (
	"context"

	"github.com/Kosench/shortlink/internal/model"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByEmailOrUsername(ctx context.Context, login string) (*model.User, error)
	GetByProvider(ctx context.Context, provider, providerID string) (*model.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type LinkRepository interface {
	Create(ctx context.Context, link *model.ShortLink) error
	GetByShortCode(ctx context.Context, shortCode string) (*model.ShortLink, error)
	GetByShortCodeAndOwner(ctx context.Context, shortCode string, userID uuid.UUID) (*model.ShortLink, error)
	ExistsByShortCode(ctx context.Context, shortCode string) (bool, error)
	ListByOwner(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.ShortLink, int64, error)
	IncrementClickCount(ctx context.Context, id uuid.UUID) error
	DeleteByOwner(ctx context.Context, id, userID uuid.UUID) error
}

type ClickRepository interface {
	Create(ctx context.Context, click *model.ClickEvent) error
	CountByLink(ctx context.Context, linkID uuid.UUID) (int64, error)
	CountByDate(ctx context.Context, linkID uuid.UUID) ([]model.DateCount, error)
	CountByUserAgent(ctx context.Context, linkID uuid.UUID) ([]model.UserAgentCount, error)
	CountByReferrer(ctx context.Context, linkID uuid.UUID) ([]model.ReferrerCount, error)
}
