package routes

import (
	"github.com/jkemboi52/streamshare/handlers"
	"github.com/jkemboi52/streamshare/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	admin := app.Group("/api/v1/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/users", handlers.GetAllUsers)
	admin.Patch("/users/:userId/deactivate", handlers.DeactivateUser)
	admin.Get("/payouts", handlers.GetPendingPayouts)
	admin.Patch("/payouts/:payoutId", handlers.DecidePayout)
}
