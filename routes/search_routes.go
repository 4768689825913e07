package routes

import (
	"github.com/jkemboi52/streamshare/handlers"
	"github.com/jkemboi52/streamshare/middleware"
	"github.com/gofiber/fiber/v2"
)

func SearchRoutes(app *fiber.App) {
	search := app.Group("/api/v1/search", middleware.Protected(), middleware.TrackPresence())

	search.Get("", handlers.Search)
}
