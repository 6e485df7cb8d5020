package handler

import (
	"context"

	"github.com/Kosench/shortlink/internal/model"
	"github.com/google/uuid"
)

type LinkService interface {
	Shorten(ctx context.Context, ownerID uuid.UUID, req *model.CreateLinkRequest) (*model.LinkResponse, error)
	Resolve(ctx context.Context, shortCode string) (*model.ShortLink, error)
	RecordClick(ctx context.Context, linkID uuid.UUID, referrer, userAgent string) error
	List(ctx context.Context, ownerID uuid.UUID, page, limit int) (*model.LinkListResponse, error)
	Delete(ctx context.Context, ownerID, linkID uuid.UUID) error
}

type AnalyticsService interface {
	GetLinkAnalytics(ctx context.Context, shortCode string, ownerID uuid.UUID) (*model.AnalyticsResponse, error)
}

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenPair, error)
	Login(ctx context.Context, login, password string) (*model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error)
	Logout(ctx context.Context, refreshToken string)
	LoginWithOAuth(ctx context.Context, identity *model.OAuthIdentity) (*model.TokenPair, error)
}

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.UserProfile, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}
