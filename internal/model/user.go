package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	Name         *string   `gorm:"size:255" json:"name,omitempty"`
	Picture      *string   `gorm:"type:text" json:"picture,omitempty"`
	Provider     *string   `gorm:"size:32;uniqueIndex:idx_users_provider_identity" json:"provider,omitempty"`
	ProviderID   *string   `gorm:"size:255;uniqueIndex:idx_users_provider_identity" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Links []ShortLink `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// LinkIdentity привязывает внешнюю учетную запись к пользователю
func (u *User) LinkIdentity(provider, providerID, picture string) {
	u.Provider = &provider
	u.ProviderID = &providerID
	if picture != "" {
		u.Picture = &picture
	}
}

func (u *User) ToProfile() *UserProfile {
	profile := &UserProfile{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		HasPassword: u.HasPassword(),
		CreatedAt:   u.CreatedAt,
	}
	if u.Name != nil {
		profile.Name = *u.Name
	}
	if u.Picture != nil {
		profile.Picture = *u.Picture
	}
	if u.Provider != nil {
		profile.Provider = *u.Provider
	}
	return profile
}

func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
