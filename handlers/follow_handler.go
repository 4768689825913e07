package handlers

import (
	"errors"
	"log"

	"github.com/jkemboi52/streamshare/database"
	"github.com/jkemboi52/streamshare/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

func FollowUser(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var target models.User
	if err := database.DB.Where("username = ? AND is_active = ?", c.Params("username"), true).First(&target).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}
	if target.ID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot follow yourself"})
	}

	var existing models.Follow
	err := database.DB.Where("follower_id = ? AND following_id = ?", userID, target.ID).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "message": "Already following this user"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Follow lookup failed for %s -> %s: %v", userID, target.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to follow user"})
	}

	follow := models.Follow{FollowerID: userID, FollowingID: target.ID}
	if err := database.DB.Create(&follow).Error; err != nil {
		log.Printf("Failed to create follow %s -> %s: %v", userID, target.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to follow user"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Now following " + target.Username})
}

func UnfollowUser(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var target models.User
	if err := database.DB.Where("username = ?", c.Params("username")).First(&target).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	result := database.DB.
		Where("follower_id = ? AND following_id = ?", userID, target.ID).
		Delete(&models.Follow{})
	if result.Error != nil {
		log.Printf("Failed to delete follow %s -> %s: %v", userID, target.ID, result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to unfollow user"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Not following this user"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Unfollowed " + target.Username})
}

func GetFollowers(c *fiber.Ctx) error {
	return listFollowProfiles(c, "following_id", "follower_id", "followers")
}

func GetFollowing(c *fiber.Ctx) error {
	return listFollowProfiles(c, "follower_id", "following_id", "following")
}

// listFollowProfiles resolves one side of the follow edge for the user named
// in the path and returns the other side as public profiles.
func listFollowProfiles(c *fiber.Ctx, matchColumn, selectColumn, key string) error {
	var target models.User
	if err := database.DB.Where("username = ? AND is_active = ?", c.Params("username"), true).First(&target).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	var userIDs []uuid.UUID
	if err := database.DB.Model(&models.Follow{}).
		Where(matchColumn+" = ?", target.ID).
		Pluck(selectColumn, &userIDs).Error; err != nil {
		log.Printf("Failed to list %s for %s: %v", key, target.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch " + key})
	}

	var users []models.User
	if len(userIDs) > 0 {
		if err := database.DB.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			log.Printf("Failed to load %s profiles for %s: %v", key, target.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch " + key})
		}
	}

	profiles := lo.Map(users, func(u models.User, _ int) models.PublicUser { return u.Public() })
	return c.JSON(fiber.Map{"success": true, key: profiles})
}
