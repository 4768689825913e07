package middleware

import (
	"time"

	config "github.com/jkemboi52/streamshare/configs"
	"github.com/jkemboi52/streamshare/database"
	"github.com/jkemboi52/streamshare/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(config.Config("JWT_SECRET")),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"success": false, "message": "Missing or invalid credentials"})
}

func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Locals("user").(*jwt.Token)
		claims := token.Claims.(jwt.MapClaims)
		role, _ := claims["role"].(string)

		if role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false, "message": "Admin access required",
			})
		}
		return c.Next()
	}
}

// TrackPresence refreshes the caller's last_seen_at on authenticated traffic.
// The write happens off the request path; a lost update only delays the
// presence sweep by one cycle.
func TrackPresence() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if ok {
			claims := token.Claims.(jwt.MapClaims)
			if raw, ok := claims["user_id"].(string); ok {
				if userID, err := uuid.Parse(raw); err == nil {
					go func() {
						now := time.Now()
						database.DB.Model(&models.User{}).
							Where("id = ?", userID).
							Update("last_seen_at", now)
					}()
				}
			}
		}
		return c.Next()
	}
}
