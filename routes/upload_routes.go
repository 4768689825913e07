package routes

import (
	"github.com/jkemboi52/streamshare/handlers"
	"github.com/jkemboi52/streamshare/middleware"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App) {
	uploads := app.Group("/api/v1/uploads", middleware.Protected())

	uploads.Get("/signature", handlers.GenerateUploadSignature)
}
