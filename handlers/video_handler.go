package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/jkemboi52/streamshare/database"
	"github.com/jkemboi52/streamshare/models"
	"github.com/jkemboi52/streamshare/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type CreateVideoRequest struct {
	Title        string  `json:"title" validate:"required,min=1,max=150"`
	Description  *string `json:"description"`
	PlaybackURL  string  `json:"playback_url" validate:"required,url"`
	ThumbnailURL *string `json:"thumbnail_url" validate:"omitempty,url"`
	DurationSecs int     `json:"duration_secs" validate:"omitempty,min=0"`
	Visibility   string  `json:"visibility" validate:"omitempty,oneof=public subscribers private"`
}

// CreateVideo records metadata for a video the client already uploaded to
// Cloudinary via a signed request.
func CreateVideo(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	var video models.Video
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		shareCode, err := utils.GenerateUniqueShareCode(tx)
		if err != nil {
			return err
		}
		video = models.Video{
			CreatorID:    userID,
			Title:        req.Title,
			Description:  req.Description,
			PlaybackURL:  req.PlaybackURL,
			ThumbnailURL: req.ThumbnailURL,
			DurationSecs: req.DurationSecs,
			ShareCode:    shareCode,
			Visibility:   visibility,
			IsPublished:  true,
		}
		if err := tx.Create(&video).Error; err != nil {
			return err
		}
		// First upload promotes the account to creator.
		return tx.Model(&models.User{}).
			Where("id = ? AND role = ?", userID, "user").
			Update("role", "creator").Error
	})
	if err != nil {
		log.Printf("Failed to create video for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create video"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "video": video})
}

func GetMyVideos(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var videos []models.Video
	if err := database.DB.
		Where("creator_id = ?", userID).
		Order("created_at desc").
		Find(&videos).Error; err != nil {
		log.Printf("Failed to list videos for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch videos"})
	}

	return c.JSON(fiber.Map{"success": true, "videos": videos})
}

// GetFeed pages through published public videos, newest first.
func GetFeed(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	var videos []models.Video
	if err := database.DB.
		Where("is_published = ? AND visibility = ?", true, models.VisibilityPublic).
		Preload("Creator").
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&videos).Error; err != nil {
		log.Printf("Failed to fetch feed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch feed"})
	}

	entries := lo.Map(videos, func(v models.Video, _ int) fiber.Map {
		return fiber.Map{"video": v, "creator": v.Creator.Public()}
	})

	return c.JSON(fiber.Map{"success": true, "videos": entries, "page": page, "limit": limit})
}

// GetVideo resolves a video by id, enforcing visibility: subscribers-only
// videos require an active subscription to the creator (or ownership),
// private videos are owner-only. Denied and missing look the same.
func GetVideo(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	videoID, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Video not found"})
	}

	var video models.Video
	if err := database.DB.Preload("Creator").First(&video, "id = ? AND is_published = ?", videoID, true).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Video not found"})
	}

	if video.CreatorID != userID {
		switch video.Visibility {
		case models.VisibilityPrivate:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Video not found"})
		case models.VisibilitySubscribers:
			var active int64
			database.DB.Model(&models.Subscription{}).
				Where("subscriber_id = ? AND creator_id = ? AND status = ?", userID, video.CreatorID, models.SubscriptionActive).
				Count(&active)
			if active == 0 {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Video not found"})
			}
		}
	}

	database.DB.Model(&video).UpdateColumn("view_count", gorm.Expr("view_count + 1"))

	return c.JSON(fiber.Map{"success": true, "video": video, "creator": video.Creator.Public()})
}

// GetVideoByShareCode serves public share links without authentication.
func GetVideoByShareCode(c *fiber.Ctx) error {
	var video models.Video
	err := database.DB.Preload("Creator").
		Where("share_code = ? AND is_published = ? AND visibility = ?", c.Params("shareCode"), true, models.VisibilityPublic).
		First(&video).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Video not found"})
	}

	database.DB.Model(&video).UpdateColumn("view_count", gorm.Expr("view_count + 1"))

	return c.JSON(fiber.Map{"success": true, "video": video, "creator": video.Creator.Public()})
}

func LikeVideo(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	videoID, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Video not found"})
	}

	var video models.Video
	if err := database.DB.First(&video, "id = ? AND is_published = ?", videoID, true).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Video not found"})
	}

	var existing models.VideoLike
	err = database.DB.Where("video_id = ? AND user_id = ?", videoID, userID).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "message": "Already liked"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Like lookup failed for %s on %s: %v", userID, videoID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to like video"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.VideoLike{VideoID: videoID, UserID: userID}).Error; err != nil {
			return err
		}
		return tx.Model(&video).UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		log.Printf("Failed to like video %s by %s: %v", videoID, userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to like video"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Video liked"})
}

func UnlikeVideo(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	videoID, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Video not found"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("video_id = ? AND user_id = ?", videoID, userID).Delete(&models.VideoLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Video{}).
			Where("id = ?", videoID).
			UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Like not found"})
	}
	if err != nil {
		log.Printf("Failed to unlike video %s by %s: %v", videoID, userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to unlike video"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Video unliked"})
}
