package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payment struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	SubscriptionID *uuid.UUID `gorm:"type:uuid;index" json:"subscription_id"`

	Amount    float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency  string  `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status    string  `gorm:"size:20;not null;default:'pending'" json:"status"`
	Reference string  `gorm:"size:64;unique" json:"reference"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
