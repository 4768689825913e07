package routes

import (
	"github.com/jkemboi52/streamshare/handlers"
	"github.com/jkemboi52/streamshare/middleware"
	"github.com/gofiber/fiber/v2"
)

func SubscriptionRoutes(app *fiber.App) {
	subscriptions := app.Group("/api/v1/subscriptions", middleware.Protected(), middleware.TrackPresence())

	subscriptions.Get("", handlers.GetMySubscriptions)
	subscriptions.Post("", handlers.Subscribe)
	subscriptions.Delete("/:subscriptionId", handlers.CancelSubscription)
}
