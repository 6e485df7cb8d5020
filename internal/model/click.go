package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClickEvent - запись об одном переходе, только вставка
type ClickEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ShortLinkID uuid.UUID `gorm:"type:uuid;not null;index" json:"short_link_id"`
	Referrer    *string   `gorm:"type:text" json:"referrer,omitempty"`
	UserAgent   *string   `gorm:"type:text" json:"user_agent,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (c *ClickEvent) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Строки результатов GROUP BY запросов аналитики
type DateCount struct {
	Date  string `gorm:"column:day" json:"date"`
	Count int64  `json:"count"`
}

type UserAgentCount struct {
	UserAgent string `json:"user_agent"`
	Count     int64  `json:"count"`
}

type BrowserCount struct {
	Browser string `json:"browser"`
	Count   int64  `json:"count"`
}

type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}
