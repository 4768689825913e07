package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jkemboi52/streamshare/database"
	"github.com/jkemboi52/streamshare/models"
	"github.com/jkemboi52/streamshare/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", testJWTSecret)

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.Message{},
		&models.Follow{},
		&models.Subscription{},
		&models.Payment{},
		&models.PayoutRequest{},
		&models.EarningsStatement{},
		&models.Video{},
		&models.VideoLike{},
	))
	database.DB = db

	app := fiber.New()
	routes.AuthRoutes(app)
	routes.PublicRoutes(app)
	routes.ProfileRoutes(app)
	routes.FollowRoutes(app)
	routes.MessagingRoutes(app)
	routes.SubscriptionRoutes(app)
	routes.SearchRoutes(app)
	routes.VideoRoutes(app)
	routes.CreatorRoutes(app)
	routes.AdminRoutes(app)
	return app
}

func createTestUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:    username,
		DisplayName: username,
		Email:       username + "@example.com",
		Password:    "not-a-real-hash",
		IsActive:    true,
	}
	require.NoError(t, database.DB.Create(user).Error)
	return user
}

func authToken(t *testing.T, user *models.User) string {
	t.Helper()
	role := user.Role
	if role == "" {
		role = "user"
	}
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, app *fiber.App, method, target, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var payload map[string]interface{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &payload))
	}
	return resp, payload
}

func createDirectConversation(t *testing.T, app *fiber.App, owner *models.User, other *models.User) string {
	t.Helper()
	resp, payload := doRequest(t, app, "POST", "/api/v1/conversations", authToken(t, owner), fiber.Map{
		"participantId": other.ID.String(),
	})
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, resp.StatusCode)
	conversation := payload["conversation"].(map[string]interface{})
	return conversation["id"].(string)
}

func sendMessage(t *testing.T, app *fiber.App, sender *models.User, conversationID, content string) map[string]interface{} {
	t.Helper()
	resp, payload := doRequest(t, app, "POST", "/api/v1/conversations/"+conversationID+"/messages", authToken(t, sender), fiber.Map{
		"content": content,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return payload["message"].(map[string]interface{})
}

func parseUUID(t *testing.T, raw string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(raw)
	require.NoError(t, err)
	return id
}
