package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EarningsStatement struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatorID uuid.UUID `gorm:"type:uuid;not null;index" json:"creator_id"`

	PeriodStart time.Time `gorm:"not null" json:"period_start"`
	PeriodEnd   time.Time `gorm:"not null" json:"period_end"`
	GrossAmount float64   `gorm:"type:numeric(10,2);not null" json:"gross_amount"`
	PdfURL      string    `gorm:"size:255" json:"pdf_url"`

	CreatedAt time.Time `json:"created_at"`
}

func (s *EarningsStatement) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
