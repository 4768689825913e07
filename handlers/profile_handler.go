package handlers

import (
	"log"

	"github.com/jkemboi52/streamshare/database"
	"github.com/jkemboi52/streamshare/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=2,max=100"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	CoverURL    *string `json:"cover_url" validate:"omitempty,url"`
}

func GetProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

func UpdateProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}
	if req.CoverURL != nil {
		user.CoverURL = req.CoverURL
	}

	if err := database.DB.Save(&user).Error; err != nil {
		log.Printf("Failed to update profile for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

// GetPublicProfile serves the public view of any account by username,
// including follower/following/video counts.
func GetPublicProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	var user models.User
	if err := database.DB.Where("username = ? AND is_active = ?", username, true).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	var followerCount, followingCount, videoCount int64
	database.DB.Model(&models.Follow{}).Where("following_id = ?", user.ID).Count(&followerCount)
	database.DB.Model(&models.Follow{}).Where("follower_id = ?", user.ID).Count(&followingCount)
	database.DB.Model(&models.Video{}).
		Where("creator_id = ? AND is_published = ? AND visibility = ?", user.ID, true, models.VisibilityPublic).
		Count(&videoCount)

	return c.JSON(fiber.Map{
		"success":         true,
		"user":            user.Public(),
		"bio":             user.Bio,
		"cover_url":       user.CoverURL,
		"follower_count":  followerCount,
		"following_count": followingCount,
		"video_count":     videoCount,
	})
}
