package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShortLink struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ShortCode string    `gorm:"size:32;not null;uniqueIndex" json:"short_code"`
	TargetURL string    `gorm:"type:text;not null" json:"target_url"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Clicks    int64     `gorm:"not null;default:0" json:"clicks"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	ClickEvents []ClickEvent `gorm:"foreignKey:ShortLinkID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ShortLink) TableName() string {
	return "short_links"
}

func (l *ShortLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
