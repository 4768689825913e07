package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

type Subscription struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SubscriberID uuid.UUID `gorm:"type:uuid;not null;index" json:"subscriber_id"`
	CreatorID    uuid.UUID `gorm:"type:uuid;not null;index" json:"creator_id"`

	Tier             string    `gorm:"size:20;not null;default:'basic'" json:"tier"`
	Status           string    `gorm:"size:20;not null;default:'active'" json:"status"`
	CurrentPeriodEnd time.Time `json:"current_period_end"`

	Subscriber User `gorm:"foreignkey:SubscriberID" json:"-"`
	Creator    User `gorm:"foreignkey:CreatorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
