package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jkemboi52/streamshare/database"
	"github.com/jkemboi52/streamshare/models"
	"github.com/jkemboi52/streamshare/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

const attachmentPlaceholder = "📎 Attachment"
const maxMessagePageSize = 100

// last_message_content is varchar(255); the preview must fit or the whole
// send transaction rolls back on postgres.
const snapshotPreviewMax = 255

type CreateConversationRequest struct {
	ParticipantID string  `json:"participantId" validate:"required,uuid"`
	Type          string  `json:"type" validate:"omitempty,oneof=direct group"`
	Title         *string `json:"title" validate:"omitempty,max=100"`
	Description   *string `json:"description"`
}

type ConversationActionRequest struct {
	Action string `json:"action" validate:"required,oneof=mark_all_read"`
}

type SendMessageRequest struct {
	Content        string  `json:"content"`
	MessageType    string  `json:"messageType" validate:"omitempty,oneof=text image video file"`
	AttachmentURL  *string `json:"attachmentUrl" validate:"omitempty,url,max=255"`
	AttachmentType *string `json:"attachmentType" validate:"omitempty,max=50"`
	FileName       *string `json:"fileName" validate:"omitempty,max=255"`
	ReplyToID      *string `json:"replyToId" validate:"omitempty,uuid"`
}

type ReplyPreview struct {
	ID      uuid.UUID         `json:"id"`
	Content string            `json:"content"`
	Sender  models.PublicUser `json:"sender"`
}

type MessageResponse struct {
	ID             uuid.UUID          `json:"id"`
	ConversationID uuid.UUID          `json:"conversation_id"`
	Content        string             `json:"content"`
	MessageType    string             `json:"message_type"`
	AttachmentURL  *string            `json:"attachment_url,omitempty"`
	AttachmentType *string            `json:"attachment_type,omitempty"`
	FileName       *string            `json:"file_name,omitempty"`
	Sender         models.PublicUser  `json:"sender"`
	Receiver       *models.PublicUser `json:"receiver,omitempty"`
	ReplyTo        *ReplyPreview      `json:"reply_to,omitempty"`
	IsDelivered    bool               `json:"is_delivered"`
	DeliveredAt    *time.Time         `json:"delivered_at"`
	IsRead         bool               `json:"is_read"`
	ReadAt         *time.Time         `json:"read_at"`
	CreatedAt      time.Time          `json:"created_at"`
}

type ConversationResponse struct {
	ID           uuid.UUID           `json:"id"`
	Type         string              `json:"type"`
	Title        *string             `json:"title,omitempty"`
	Description  *string             `json:"description,omitempty"`
	Participants []models.PublicUser `json:"participants"`
	LastMessage  *MessageResponse    `json:"last_message"`
	UnreadCount  int64               `json:"unread_count"`
	CreatedAt    time.Time           `json:"created_at"`
}

type PaginationResponse struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"has_more"`
}

// GetUserConversations lists the caller's active conversations, newest
// activity first, each with participants, latest message and a fresh unread
// count. The count is computed per request; nothing is cached.
func GetUserConversations(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var conversations []models.Conversation
	if err := database.DB.
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id AND cp.user_id = ?", userID).
		Where("conversations.is_active = ?", true).
		Preload("Participants").
		Order("COALESCE(conversations.last_message_at, conversations.created_at) DESC").
		Find(&conversations).Error; err != nil {
		log.Printf("Failed to list conversations for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch conversations"})
	}

	responses := make([]ConversationResponse, 0, len(conversations))
	for i := range conversations {
		resp, err := conversationResponse(&conversations[i], userID)
		if err != nil {
			log.Printf("Failed to enrich conversation %s: %v", conversations[i].ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch conversations"})
		}
		responses = append(responses, resp)
	}

	return c.JSON(fiber.Map{"success": true, "conversations": responses})
}

// CreateOrGetConversation is idempotent for direct conversations: a second
// create for the same pair returns the existing thread. The lookup and the
// insert are not atomic, so concurrent first-creates for the same pair can
// race; see the unique-pair note in DESIGN.md.
func CreateOrGetConversation(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	participantID, _ := uuid.Parse(req.ParticipantID)
	if participantID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot start a conversation with yourself"})
	}

	convType := req.Type
	if convType == "" {
		convType = models.ConversationDirect
	}

	var participant models.User
	if err := database.DB.First(&participant, "id = ? AND is_active = ?", participantID, true).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Participant not found"})
	}

	if convType == models.ConversationDirect {
		var existing models.Conversation
		err := database.DB.
			Joins("JOIN conversation_participants cp1 ON cp1.conversation_id = conversations.id AND cp1.user_id = ?", userID).
			Joins("JOIN conversation_participants cp2 ON cp2.conversation_id = conversations.id AND cp2.user_id = ?", participantID).
			Where("conversations.type = ? AND conversations.is_active = ?", models.ConversationDirect, true).
			Preload("Participants").
			First(&existing).Error
		if err == nil {
			resp, rerr := conversationResponse(&existing, userID)
			if rerr != nil {
				log.Printf("Failed to enrich conversation %s: %v", existing.ID, rerr)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch conversation"})
			}
			return c.JSON(fiber.Map{"success": true, "conversation": resp})
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed direct-conversation lookup for %s/%s: %v", userID, participantID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create conversation"})
		}
	}

	var me models.User
	if err := database.DB.First(&me, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	conversation := models.Conversation{
		Type:         convType,
		Participants: []*models.User{&me, &participant},
		IsActive:     true,
	}
	if convType == models.ConversationGroup {
		conversation.Title = req.Title
		conversation.Description = req.Description
	}
	if err := database.DB.Create(&conversation).Error; err != nil {
		log.Printf("Failed to create conversation for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create conversation"})
	}

	resp, err := conversationResponse(&conversation, userID)
	if err != nil {
		log.Printf("Failed to enrich conversation %s: %v", conversation.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create conversation"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "conversation": resp})
}

func GetConversation(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	conversation, err := conversationForParticipant(c.Params("conversationId"), userID)
	if err != nil {
		return conversationLookupError(c, err)
	}

	resp, err := conversationResponse(conversation, userID)
	if err != nil {
		log.Printf("Failed to enrich conversation %s: %v", conversation.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch conversation"})
	}
	return c.JSON(fiber.Map{"success": true, "conversation": resp})
}

// UpdateConversation handles conversation actions; the only one today is
// mark_all_read, which is idempotent.
func UpdateConversation(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req ConversationActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	conversation, err := conversationForParticipant(c.Params("conversationId"), userID)
	if err != nil {
		return conversationLookupError(c, err)
	}

	now := time.Now()
	result := database.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversation.ID, userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		log.Printf("Failed to mark conversation %s read for %s: %v", conversation.ID, userID, result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to mark messages as read"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "All messages marked as read"})
}

// GetConversationMessages pages through non-deleted messages oldest first,
// the opposite of the conversation listing order.
func GetConversationMessages(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	conversation, err := conversationForParticipant(c.Params("conversationId"), userID)
	if err != nil {
		return conversationLookupError(c, err)
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	if limit > maxMessagePageSize {
		limit = maxMessagePageSize
	}
	offset := (page - 1) * limit

	var total int64
	if err := database.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND is_deleted = ?", conversation.ID, false).
		Count(&total).Error; err != nil {
		log.Printf("Failed to count messages in %s: %v", conversation.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch messages"})
	}

	var messages []models.Message
	if err := database.DB.
		Where("conversation_id = ? AND is_deleted = ?", conversation.ID, false).
		Preload("Sender").
		Preload("Receiver").
		Order("created_at asc").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		log.Printf("Failed to fetch messages in %s: %v", conversation.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch messages"})
	}

	responses := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, messageResponse(&messages[i]))
	}

	pagination := PaginationResponse{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: int64(offset+len(messages)) < total,
	}

	return c.JSON(fiber.Map{"success": true, "messages": responses, "pagination": pagination})
}

// SendMessage appends to the ledger. The message insert and the parent
// conversation's last-message snapshot are committed in one transaction so a
// reader never sees one without the other.
func SendMessage(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	content := strings.TrimSpace(req.Content)
	if content == "" && (req.AttachmentURL == nil || *req.AttachmentURL == "") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Message content or attachment is required"})
	}

	conversation, err := conversationForParticipant(c.Params("conversationId"), userID)
	if err != nil {
		return conversationLookupError(c, err)
	}

	var receiverID *uuid.UUID
	if conversation.Type == models.ConversationDirect {
		other, found := lo.Find(conversation.Participants, func(u *models.User) bool {
			return u.ID != userID
		})
		if !found {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Conversation has no recipient"})
		}
		receiverID = &other.ID
	}

	var replyToID *uuid.UUID
	if req.ReplyToID != nil && *req.ReplyToID != "" {
		parsed, _ := uuid.Parse(*req.ReplyToID)
		var parent models.Message
		if err := database.DB.
			First(&parent, "id = ? AND conversation_id = ? AND is_deleted = ?", parsed, conversation.ID, false).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Replied-to message not found in this conversation"})
		}
		replyToID = &parent.ID
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = "text"
	}

	now := time.Now()
	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       userID,
		ReceiverID:     receiverID,
		Content:        content,
		MessageType:    messageType,
		AttachmentURL:  req.AttachmentURL,
		AttachmentType: req.AttachmentType,
		FileName:       req.FileName,
		ReplyToID:      replyToID,
		IsDelivered:    true,
		DeliveredAt:    &now,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}

		preview := content
		if preview == "" {
			preview = attachmentPlaceholder
		} else if runes := []rune(preview); len(runes) > snapshotPreviewMax {
			preview = string(runes[:snapshotPreviewMax])
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversation.ID).
			Updates(map[string]interface{}{
				"last_message_id":        message.ID,
				"last_message_content":   preview,
				"last_message_at":        message.CreatedAt,
				"last_message_sender_id": userID,
			}).Error
	})
	if err != nil {
		log.Printf("Failed to store message in %s from %s: %v", conversation.ID, userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to send message"})
	}

	if err := database.DB.
		Preload("Sender").
		Preload("Receiver").
		First(&message, "id = ?", message.ID).Error; err != nil {
		log.Printf("Failed to reload message %s: %v", message.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to send message"})
	}

	// Realtime push is best effort; the message is already committed.
	select {
	case websocket.Broadcast <- &message:
	default:
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": messageResponse(&message)})
}

// conversationForParticipant fetches an active conversation only when userID
// participates in it. Unknown and forbidden collapse into the same not-found
// error so callers cannot probe for existence.
func conversationForParticipant(conversationIDParam string, userID uuid.UUID) (*models.Conversation, error) {
	conversationID, err := uuid.Parse(conversationIDParam)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}

	var conversation models.Conversation
	err = database.DB.
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id AND cp.user_id = ?", userID).
		Where("conversations.id = ? AND conversations.is_active = ?", conversationID, true).
		Preload("Participants").
		First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func conversationLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Conversation not found"})
	}
	log.Printf("Conversation lookup failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch conversation"})
}

func conversationResponse(conversation *models.Conversation, userID uuid.UUID) (ConversationResponse, error) {
	resp := ConversationResponse{
		ID:          conversation.ID,
		Type:        conversation.Type,
		Title:       conversation.Title,
		Description: conversation.Description,
		Participants: lo.Map(conversation.Participants, func(u *models.User, _ int) models.PublicUser {
			return u.Public()
		}),
		CreatedAt: conversation.CreatedAt,
	}

	var last models.Message
	err := database.DB.
		Where("conversation_id = ? AND is_deleted = ?", conversation.ID, false).
		Preload("Sender").
		Preload("Receiver").
		Order("created_at desc").
		First(&last).Error
	if err == nil {
		lastResp := messageResponse(&last)
		resp.LastMessage = &lastResp
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return resp, err
	}

	err = database.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ? AND is_deleted = ?", conversation.ID, userID, false, false).
		Count(&resp.UnreadCount).Error
	if err != nil {
		return resp, err
	}

	return resp, nil
}

func messageResponse(m *models.Message) MessageResponse {
	resp := MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Content:        m.Content,
		MessageType:    m.MessageType,
		AttachmentURL:  m.AttachmentURL,
		AttachmentType: m.AttachmentType,
		FileName:       m.FileName,
		Sender:         m.Sender.Public(),
		IsDelivered:    m.IsDelivered,
		DeliveredAt:    m.DeliveredAt,
		IsRead:         m.IsRead,
		ReadAt:         m.ReadAt,
		CreatedAt:      m.CreatedAt,
	}
	if m.Receiver != nil {
		receiver := m.Receiver.Public()
		resp.Receiver = &receiver
	}

	// Reply previews resolve exactly one level; a preview never carries its
	// own preview.
	if m.ReplyToID != nil {
		var parent models.Message
		err := database.DB.
			Preload("Sender").
			First(&parent, "id = ? AND is_deleted = ?", *m.ReplyToID, false).Error
		if err == nil {
			resp.ReplyTo = &ReplyPreview{
				ID:      parent.ID,
				Content: parent.Content,
				Sender:  parent.Sender.Public(),
			}
		}
	}

	return resp
}
