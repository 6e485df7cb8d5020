package model

import (
	"time"

	"github.com/google/uuid"
)

type CreateLinkRequest struct {
	TargetURL  string `json:"target_url" binding:"required"`
	CustomCode string `json:"custom_code,omitempty"`
}

type LinkResponse struct {
	ID        uuid.UUID `json:"id"`
	ShortCode string    `json:"short_code"`
	TargetURL string    `json:"target_url"`
	ShortURL  string    `json:"short_url"`
	Clicks    int64     `json:"clicks"`
	CreatedAt time.Time `json:"created_at"`
}

type PageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

type LinkListResponse struct {
	Data []LinkResponse `json:"data"`
	Meta PageMeta       `json:"meta"`
}

type LinkSummary struct {
	ID        uuid.UUID `json:"id"`
	ShortCode string    `json:"short_code"`
	TargetURL string    `json:"target_url"`
	Clicks    int64     `json:"clicks"`
	CreatedAt time.Time `json:"created_at"`
}

type AnalyticsResponse struct {
	Link          LinkSummary     `json:"link"`
	TotalEvents   int64           `json:"total_events"`
	ClicksByDate  []DateCount     `json:"clicks_by_date"`
	BrowserStats  []BrowserCount  `json:"browser_stats"`
	ReferrerStats []ReferrerCount `json:"referrer_stats"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Username string `json:"username" binding:"required,min=3,max=64,alphanum"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name,omitempty" binding:"omitempty,max=255"`
}

type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,max=255"`
	Password *string `json:"password,omitempty" binding:"omitempty,min=8,max=72"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

type UserProfile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	Name        string    `json:"name,omitempty"`
	Picture     string    `json:"picture,omitempty"`
	Provider    string    `json:"provider,omitempty"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
}

// TokenPair - пара JWT, выдаваемая после любой успешной аутентификации
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// OAuthIdentity - нормализованный профиль внешнего провайдера
type OAuthIdentity struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	Picture    string

	// EmailVerified - провайдер подтвердил владение адресом
	EmailVerified bool
}
