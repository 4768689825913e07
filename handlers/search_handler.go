package handlers

import (
	"log"
	"strconv"
	"strings"

	"github.com/jkemboi52/streamshare/database"
	"github.com/jkemboi52/streamshare/models"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

// Search matches users by username or display name and published public
// videos by title. type=users|videos narrows the result; default is both.
func Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Search query is required"})
	}

	searchType := c.Query("type", "all")
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit
	pattern := "%" + strings.ToLower(query) + "%"

	result := fiber.Map{"success": true, "page": page, "limit": limit}

	if searchType == "all" || searchType == "users" {
		var users []models.User
		err := database.DB.
			Where("is_active = ?", true).
			Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?", pattern, pattern).
			Order("username asc").
			Limit(limit).
			Offset(offset).
			Find(&users).Error
		if err != nil {
			log.Printf("User search failed for %q: %v", query, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Search failed"})
		}
		result["users"] = lo.Map(users, func(u models.User, _ int) models.PublicUser { return u.Public() })
	}

	if searchType == "all" || searchType == "videos" {
		var videos []models.Video
		err := database.DB.
			Where("is_published = ? AND visibility = ?", true, models.VisibilityPublic).
			Where("LOWER(title) LIKE ?", pattern).
			Order("view_count desc").
			Limit(limit).
			Offset(offset).
			Find(&videos).Error
		if err != nil {
			log.Printf("Video search failed for %q: %v", query, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Search failed"})
		}
		result["videos"] = videos
	}

	return c.JSON(result)
}
