package handlers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jkemboi52/streamshare/database"
	"github.com/jkemboi52/streamshare/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDirectConversationIsIdempotent(t *testing.T) {
	app := setupTestApp(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")

	resp, payload := doRequest(t, app, "POST", "/api/v1/conversations", authToken(t, alice), fiber.Map{
		"participantId": bob.ID.String(),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := payload["conversation"].(map[string]interface{})["id"].(string)

	// A second create from either side returns the same conversation.
	resp, payload = doRequest(t, app, "POST", "/api/v1/conversations", authToken(t, alice), fiber.Map{
		"participantId": bob.ID.String(),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, first, payload["conversation"].(map[string]interface{})["id"].(string))

	resp, payload = doRequest(t, app, "POST", "/api/v1/conversations", authToken(t, bob), fiber.Map{
		"participantId": alice.ID.String(),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, first, payload["conversation"].(map[string]interface{})["id"].(string))

	var total int64
	require.NoError(t, database.DB.Model(&models.Conversation{}).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestCreateConversationRejectsUnknownParticipantAndSelf(t *testing.T) {
	app := setupTestApp(t)
	alice := createTestUser(t, "alice")

	resp, _ := doRequest(t, app, "POST", "/api/v1/conversations", authToken(t, alice), fiber.Map{
		"participantId": "6a9e3f2c-0a36-4c9f-9a57-2b1f6f6f0f10",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, app, "POST", "/api/v1/conversations", authToken(t, alice), fiber.Map{
		"participantId": alice.ID.String(),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNonParticipantCannotReadOrWrite(t *testing.T) {
	app := setupTestApp(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	mallory := createTestUser(t, "mallory")

	conversationID := createDirectConversation(t, app, alice, bob)
	sendMessage(t, app, alice, conversationID, "hello bob")

	resp, _ := doRequest(t, app, "GET", "/api/v1/conversations/"+conversationID+"/messages", authToken(t, mallory), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, app, "POST", "/api/v1/conversations/"+conversationID+"/messages", authToken(t, mallory), fiber.Map{
		"content": "let me in",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, app, "GET", "/api/v1/conversations/"+conversationID, authToken(t, mallory), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	app := setupTestApp(t)

	resp, payload := doRequest(t, app, "GET", "/api/v1/conversations", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
}

func TestSendMessageUpdatesConversationSnapshot(t *testing.T) {
	app := setupTestApp(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	conversationID := createDirectConversation(t, app, alice, bob)

	message := sendMessage(t, app, alice, conversationID, "hello")
	assert.Equal(t, "hello", message["content"])
	assert.Equal(t, true, message["is_delivered"])
	assert.Equal(t, false, message["is_read"])

	var conversation models.Conversation
	require.NoError(t, database.DB.First(&conversation, "id = ?", conversationID).Error)
	require.NotNil(t, conversation.LastMessageContent)
	assert.Equal(t, "hello", *conversation.LastMessageContent)
	require.NotNil(t, conversation.LastMessageID)
	assert.Equal(t, message["id"].(string), conversation.LastMessageID.String())
	require.NotNil(t, conversation.LastMessageSenderID)
	assert.Equal(t, alice.ID, *conversation.LastMessageSenderID)

	var stored models.Message
	require.NoError(t, database.DB.First(&stored, "id = ?", message["id"].(string)).Error)
	require.NotNil(t, conversation.LastMessageAt)
	assert.WithinDuration(t, stored.CreatedAt, *conversation.LastMessageAt, time.Millisecond)

	// Direct conversations resolve the receiver to the other participant.
	require.NotNil(t, stored.ReceiverID)
	assert.Equal(t, bob.ID, *stored.ReceiverID)
}

func TestSendMessageValidation(t *testing.T) {
	app := setupTestApp(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	conversationID := createDirectConversation(t, app, alice, bob)

	resp, _ := doRequest(t, app, "POST", "/api/v1/conversations/"+conversationID+"/messages", authToken(t, alice), fiber.Map{
		"content": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// An attachment without text is fine; the snapshot gets a placeholder.
	resp, payload := doRequest(t, app, "POST", "/api/v1/conversations/"+conversationID+"/messages", authToken(t, alice), fiber.Map{
		"content":       "",
		"messageType":   "image",
		"attachmentUrl": "https://cdn.example.com/pic.png",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "image", payload["message"].(map[string]interface{})["message_type"])

	var conversation models.Conversation
	require.NoError(t, database.DB.First(&conversation, "id = ?", conversationID).Error)
	require.NotNil(t, conversation.LastMessageContent)
	assert.Equal(t, "📎 Attachment", *conversation.LastMessageContent)
}

func TestLongMessageTruncatesSnapshotPreview(t *testing.T) {
	app := setupTestApp(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	conversationID := createDirectConversation(t, app, alice, bob)

	long := strings.Repeat("a", 300)
	message := sendMessage(t, app, alice, conversationID, long)

	// The ledger keeps the full text; only the varchar snapshot is cut.
	assert.Equal(t, long, message["content"])
	var stored models.Message
	require.NoError(t, database.DB.First(&stored, "id = ?", message["id"].(string)).Error)
	assert.Equal(t, long, stored.Content)

	var conversation models.Conversation
	require.NoError(t, database.DB.First(&conversation, "id = ?", conversationID).Error)
	require.NotNil(t, conversation.LastMessageContent)
	assert.Len(t, []rune(*conversation.LastMessageContent), 255)
	assert.Equal(t, long[:255], *conversation.LastMessageContent)

	// Oversized attachment fields are rejected before they can hit a column.
	resp, _ := doRequest(t, app, "POST", "/api/v1/conversations/"+conversationID+"/messages", authToken(t, alice), fiber.Map{
		"messageType":   "file",
		"attachmentUrl": "https://cdn.example.com/" + strings.Repeat("f", 300),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGroupConversationMessagesHaveNoReceiver(t *testing.T) {
	app := setupTestApp(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")

	resp, payload := doRequest(t, app, "POST", "/api/v1/conversations", authToken(t, alice), fiber.Map{
		"participantId": bob.ID.String(),
		"type":          "group",
		"title":         "watch party",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	conversation := payload["conversation"].(map[string]interface{})
	require.Equal(t, "group", conversation["type"])
	assert.Equal(t, "watch party", conversation["title"])
	conversationID := conversation["id"].(string)

	message := sendMessage(t, app, alice, conversationID, "starting soon")
	assert.Nil(t, message["receiver"])

	var stored models.Message
	require.NoError(t, database.DB.First(&stored, "id = ?", message["id"].(string)).Error)
	assert.Nil(t, stored.ReceiverID)

	// Unread accounting keys on receiver_id, so group threads report zero.
	resp, payload = doRequest(t, app, "GET", "/api/v1/conversations", authToken(t, bob), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	conversations := payload["conversations"].([]interface{})
	require.Len(t, conversations, 1)
	listed := conversations[0].(map[string]interface{})
	assert.Equal(t, "group", listed["type"])
	assert.EqualValues(t, 0, listed["unread_count"].(float64))
	require.NotNil(t, listed["last_message"])
	assert.Equal(t, "starting soon", listed["last_message"].(map[string]interface{})["content"])
}

func TestReplyPreviewResolvesOneLevel(t *testing.T) {
	app := setupTestApp(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	conversationID := createDirectConversation(t, app, alice, bob)

	first := sendMessage(t, app, alice, conversationID, "original")

	resp, payload := doRequest(t, app, "POST", "/api/v1/conversations/"+conversationID+"/messages", authToken(t, bob), fiber.Map{
		"content":   "replying",
		"replyToId": first["id"].(string),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	reply := payload["message"].(map[string]interface{})
	preview := reply["reply_to"].(map[string]interface{})
	assert.Equal(t, first["id"], preview["id"])
	assert.Equal(t, "original", preview["content"])
	assert.Equal(t, "alice", preview["sender"].(map[string]interface{})["username"])

	// Replying to a message from another conversation is rejected.
	other := createTestUser(t, "carol")
	otherConversation := createDirectConversation(t, app, alice, other)
	foreign := sendMessage(t, app, alice, otherConversation, "elsewhere")

	resp, _ = doRequest(t, app, "POST", "/api/v1/conversations/"+conversationID+"/messages", authToken(t, bob), fiber.Map{
		"content":   "bad reply",
		"replyToId": foreign["id"].(string),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMessageListOrderingAndPagination(t *testing.T) {
	app := setupTestApp(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	conversationID := createDirectConversation(t, app, alice, bob)

	for i := 1; i <= 5; i++ {
		sendMessage(t, app, alice, conversationID, fmt.Sprintf("msg-%d", i))
		time.Sleep(2 * time.Millisecond)
	}

	resp, payload := doRequest(t, app, "GET", "/api/v1/conversations/"+conversationID+"/messages?page=1&limit=3", authToken(t, bob), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	messages := payload["messages"].([]interface{})
	require.Len(t, messages, 3)
	for i, raw := range messages {
		assert.Equal(t, fmt.Sprintf("msg-%d", i+1), raw.(map[string]interface{})["content"])
	}

	pagination := payload["pagination"].(map[string]interface{})
	assert.EqualValues(t, 5, pagination["total"])
	assert.Equal(t, true, pagination["has_more"])

	resp, payload = doRequest(t, app, "GET", "/api/v1/conversations/"+conversationID+"/messages?page=2&limit=3", authToken(t, bob), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	messages = payload["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, false, payload["pagination"].(map[string]interface{})["has_more"])

	// Limit is clamped, never unbounded.
	resp, payload = doRequest(t, app, "GET", "/api/v1/conversations/"+conversationID+"/messages?limit=100000", authToken(t, bob), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 100, payload["pagination"].(map[string]interface{})["limit"])
}

func TestSoftDeletedMessagesAreInvisible(t *testing.T) {
	app := setupTestApp(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	conversationID := createDirectConversation(t, app, alice, bob)

	kept := sendMessage(t, app, alice, conversationID, "kept")
	deleted := sendMessage(t, app, alice, conversationID, "deleted")

	now := time.Now()
	require.NoError(t, database.DB.Model(&models.Message{}).
		Where("id = ?", deleted["id"].(string)).
		Updates(map[string]interface{}{"is_deleted": true, "deleted_at": now}).Error)

	resp, payload := doRequest(t, app, "GET", "/api/v1/conversations/"+conversationID+"/messages", authToken(t, bob), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	messages := payload["messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.Equal(t, kept["id"], messages[0].(map[string]interface{})["id"])
	assert.EqualValues(t, 1, payload["pagination"].(map[string]interface{})["total"])

	// The row itself survives.
	var total int64
	require.NoError(t, database.DB.Model(&models.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&total).Error)
	assert.EqualValues(t, 2, total)
}

func TestMarkAllReadIsIdempotent(t *testing.T) {
	app := setupTestApp(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	conversationID := createDirectConversation(t, app, alice, bob)

	sendMessage(t, app, alice, conversationID, "one")
	sendMessage(t, app, alice, conversationID, "two")

	unread := func(user *models.User) float64 {
		resp, payload := doRequest(t, app, "GET", "/api/v1/conversations", authToken(t, user), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		conversations := payload["conversations"].([]interface{})
		require.Len(t, conversations, 1)
		return conversations[0].(map[string]interface{})["unread_count"].(float64)
	}

	assert.EqualValues(t, 2, unread(bob))
	assert.EqualValues(t, 0, unread(alice))

	resp, _ := doRequest(t, app, "PATCH", "/api/v1/conversations/"+conversationID, authToken(t, bob), fiber.Map{
		"action": "mark_all_read",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, unread(bob))

	var remaining int64
	require.NoError(t, database.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversationID, bob.ID, false).
		Count(&remaining).Error)
	assert.EqualValues(t, 0, remaining)

	// Calling again with nothing unread is still a success.
	resp, _ = doRequest(t, app, "PATCH", "/api/v1/conversations/"+conversationID, authToken(t, bob), fiber.Map{
		"action": "mark_all_read",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, unread(bob))

	resp, _ = doRequest(t, app, "PATCH", "/api/v1/conversations/"+conversationID, authToken(t, bob), fiber.Map{
		"action": "archive",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConversationListOrderingWithFallback(t *testing.T) {
	app := setupTestApp(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	carol := createTestUser(t, "carol")
	dave := createTestUser(t, "dave")

	withBob := createDirectConversation(t, app, alice, bob)
	time.Sleep(2 * time.Millisecond)
	withCarol := createDirectConversation(t, app, alice, carol)
	time.Sleep(2 * time.Millisecond)
	withDave := createDirectConversation(t, app, alice, dave)
	time.Sleep(2 * time.Millisecond)

	// Messaging bob moves that thread to the top; the empty threads fall
	// back to creation time, newest first.
	sendMessage(t, app, alice, withBob, "hi bob")

	resp, payload := doRequest(t, app, "GET", "/api/v1/conversations", authToken(t, alice), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conversations := payload["conversations"].([]interface{})
	require.Len(t, conversations, 3)
	ids := make([]string, 0, 3)
	for _, raw := range conversations {
		ids = append(ids, raw.(map[string]interface{})["id"].(string))
	}
	assert.Equal(t, []string{withBob, withDave, withCarol}, ids)

	top := conversations[0].(map[string]interface{})
	require.NotNil(t, top["last_message"])
	assert.Equal(t, "hi bob", top["last_message"].(map[string]interface{})["content"])
	assert.Nil(t, conversations[1].(map[string]interface{})["last_message"])
}

func TestDirectMessagingEndToEnd(t *testing.T) {
	app := setupTestApp(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")

	conversationID := createDirectConversation(t, app, alice, bob)
	message := sendMessage(t, app, alice, conversationID, "hi")

	var conversation models.Conversation
	require.NoError(t, database.DB.First(&conversation, "id = ?", conversationID).Error)
	require.NotNil(t, conversation.LastMessageContent)
	assert.Equal(t, "hi", *conversation.LastMessageContent)

	resp, payload := doRequest(t, app, "GET", "/api/v1/conversations/"+conversationID+"/messages?page=1&limit=50", authToken(t, bob), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	messages := payload["messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.Equal(t, message["id"], messages[0].(map[string]interface{})["id"])
	pagination := payload["pagination"].(map[string]interface{})
	assert.EqualValues(t, 1, pagination["total"])
	assert.Equal(t, false, pagination["has_more"])

	resp, _ = doRequest(t, app, "PATCH", "/api/v1/conversations/"+conversationID, authToken(t, bob), fiber.Map{
		"action": "mark_all_read",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, payload = doRequest(t, app, "GET", "/api/v1/conversations", authToken(t, bob), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	conversations := payload["conversations"].([]interface{})
	require.Len(t, conversations, 1)
	assert.EqualValues(t, 0, conversations[0].(map[string]interface{})["unread_count"].(float64))
}
