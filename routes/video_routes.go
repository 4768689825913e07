package routes

import (
	"github.com/jkemboi52/streamshare/handlers"
	"github.com/jkemboi52/streamshare/middleware"
	"github.com/gofiber/fiber/v2"
)

func VideoRoutes(app *fiber.App) {
	videos := app.Group("/api/v1/videos", middleware.Protected(), middleware.TrackPresence())

	videos.Get("", handlers.GetMyVideos)
	videos.Post("", handlers.CreateVideo)
	videos.Get("/feed", handlers.GetFeed)
	videos.Get("/:videoId", handlers.GetVideo)
	videos.Post("/:videoId/like", handlers.LikeVideo)
	videos.Delete("/:videoId/like", handlers.UnlikeVideo)
}
