package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ConversationDirect = "direct"
	ConversationGroup  = "group"
)

// Conversation is a direct or group thread. The last_message_* columns are a
// denormalized snapshot refreshed inside the same transaction that inserts a
// message; the messages table stays the source of truth.
type Conversation struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Type        string    `gorm:"size:10;not null;default:'direct'" json:"type"`
	Title       *string   `gorm:"size:100" json:"title,omitempty"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`

	Participants []*User `gorm:"many2many:conversation_participants;" json:"-"`

	LastMessageID       *uuid.UUID `gorm:"type:uuid" json:"last_message_id"`
	LastMessageContent  *string    `gorm:"size:255" json:"last_message_content"`
	LastMessageAt       *time.Time `json:"last_message_at"`
	LastMessageSenderID *uuid.UUID `gorm:"type:uuid" json:"last_message_sender_id"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (conv *Conversation) BeforeCreate(tx *gorm.DB) error {
	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	return nil
}
