package routes

import (
	"github.com/jkemboi52/streamshare/handlers"
	"github.com/jkemboi52/streamshare/middleware"
	"github.com/gofiber/fiber/v2"
)

func CreatorRoutes(app *fiber.App) {
	creator := app.Group("/api/v1/creator", middleware.Protected(), middleware.TrackPresence())

	creator.Get("/earnings", handlers.GetEarnings)
	creator.Get("/payouts", handlers.GetMyPayouts)
	creator.Post("/payouts", handlers.RequestPayout)
	creator.Get("/statements", handlers.GetMyStatements)
	creator.Post("/statements", handlers.GenerateStatement)
}
