package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PayoutPending  = "pending"
	PayoutApproved = "approved"
	PayoutRejected = "rejected"
	PayoutPaid     = "paid"
)

type PayoutRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatorID uuid.UUID `gorm:"type:uuid;not null;index" json:"creator_id"`

	Amount      float64    `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status      string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	ProcessedAt *time.Time `json:"processed_at"`

	Creator User `gorm:"foreignkey:CreatorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PayoutRequest) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
