package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	VisibilityPublic      = "public"
	VisibilitySubscribers = "subscribers"
	VisibilityPrivate     = "private"
)

type Video struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatorID uuid.UUID `gorm:"type:uuid;not null;index" json:"creator_id"`

	Title        string  `gorm:"size:150;not null" json:"title"`
	Description  *string `gorm:"type:text" json:"description"`
	PlaybackURL  string  `gorm:"size:255;not null" json:"playback_url"`
	ThumbnailURL *string `gorm:"size:255" json:"thumbnail_url"`
	DurationSecs int     `gorm:"default:0" json:"duration_secs"`

	ShareCode  string `gorm:"size:10;not null;unique" json:"share_code"`
	Visibility string `gorm:"size:20;not null;default:'public'" json:"visibility"`

	ViewCount   int64 `gorm:"default:0" json:"view_count"`
	LikeCount   int64 `gorm:"default:0" json:"like_count"`
	IsPublished bool  `gorm:"default:true" json:"is_published"`

	Creator User `gorm:"foreignkey:CreatorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
