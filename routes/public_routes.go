package routes

import (
	"github.com/jkemboi52/streamshare/handlers"
	"github.com/gofiber/fiber/v2"
)

// PublicRoutes are reachable without authentication: public profiles and
// shared watch links.
func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/profiles/:username", handlers.GetPublicProfile)
	api.Get("/watch/:shareCode", handlers.GetVideoByShareCode)
}
