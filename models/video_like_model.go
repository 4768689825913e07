package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VideoLike struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	VideoID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_video_like" json:"video_id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_video_like" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (l *VideoLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
