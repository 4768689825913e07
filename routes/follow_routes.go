package routes

import (
	"github.com/jkemboi52/streamshare/handlers"
	"github.com/jkemboi52/streamshare/middleware"
	"github.com/gofiber/fiber/v2"
)

func FollowRoutes(app *fiber.App) {
	users := app.Group("/api/v1/users", middleware.Protected(), middleware.TrackPresence())

	users.Post("/:username/follow", handlers.FollowUser)
	users.Delete("/:username/follow", handlers.UnfollowUser)
	users.Get("/:username/followers", handlers.GetFollowers)
	users.Get("/:username/following", handlers.GetFollowing)
}
