package routes

import (
	"github.com/jkemboi52/streamshare/handlers"
	"github.com/jkemboi52/streamshare/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App) {
	profile := app.Group("/api/v1/me", middleware.Protected(), middleware.TrackPresence())

	profile.Get("", handlers.GetProfile)
	profile.Patch("", handlers.UpdateProfile)
}
