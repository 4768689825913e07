package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message rows are append-only; state transitions (delivered, read, soft
// delete) flip flags but never remove the row. ReceiverID is set for direct
// conversations only.
type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID       uuid.UUID  `gorm:"type:uuid;not null" json:"sender_id"`
	ReceiverID     *uuid.UUID `gorm:"type:uuid;index" json:"receiver_id"`

	Content        string  `gorm:"type:text" json:"content"`
	MessageType    string  `gorm:"size:20;not null;default:'text'" json:"message_type"`
	AttachmentURL  *string `gorm:"size:255" json:"attachment_url,omitempty"`
	AttachmentType *string `gorm:"size:50" json:"attachment_type,omitempty"`
	FileName       *string `gorm:"size:255" json:"file_name,omitempty"`

	// Weak reference to an earlier message in the same conversation,
	// resolved one level deep at read time.
	ReplyToID *uuid.UUID `gorm:"type:uuid" json:"reply_to_id,omitempty"`

	IsDelivered bool       `gorm:"default:false" json:"is_delivered"`
	DeliveredAt *time.Time `json:"delivered_at"`
	IsRead      bool       `gorm:"default:false" json:"is_read"`
	ReadAt      *time.Time `json:"read_at"`
	IsDeleted   bool       `gorm:"default:false" json:"-"`
	DeletedAt   *time.Time `json:"-"`

	Sender   User  `gorm:"foreignkey:SenderID" json:"-"`
	Receiver *User `gorm:"foreignkey:ReceiverID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
