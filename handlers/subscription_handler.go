package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/jkemboi52/streamshare/database"
	"github.com/jkemboi52/streamshare/models"
	"github.com/jkemboi52/streamshare/payments"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscribeRequest struct {
	CreatorID string `json:"creatorId" validate:"required,uuid"`
	Tier      string `json:"tier" validate:"omitempty,oneof=basic plus premium"`
}

// Subscribe creates a month-long subscription to a creator, capturing the
// (simulated) payment in the same transaction as the subscription row.
func Subscribe(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	creatorID, _ := uuid.Parse(req.CreatorID)
	if creatorID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot subscribe to yourself"})
	}

	tier := req.Tier
	if tier == "" {
		tier = "basic"
	}
	price, ok := payments.TierPrice(tier)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Unknown subscription tier"})
	}

	var creator models.User
	if err := database.DB.First(&creator, "id = ? AND is_active = ?", creatorID, true).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Creator not found"})
	}

	var existing models.Subscription
	err := database.DB.
		Where("subscriber_id = ? AND creator_id = ? AND status = ?", userID, creatorID, models.SubscriptionActive).
		First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "message": "Already subscribed to this creator"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Subscription lookup failed for %s -> %s: %v", userID, creatorID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to subscribe"})
	}

	charge := payments.SimulateCharge(userID, price, "USD")

	subscription := models.Subscription{
		SubscriberID:     userID,
		CreatorID:        creatorID,
		Tier:             tier,
		Status:           models.SubscriptionActive,
		CurrentPeriodEnd: time.Now().AddDate(0, 1, 0),
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&subscription).Error; err != nil {
			return err
		}
		payment := models.Payment{
			UserID:         userID,
			SubscriptionID: &subscription.ID,
			Amount:         price,
			Currency:       "USD",
			Status:         charge.Status,
			Reference:      charge.Reference,
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		log.Printf("Failed to create subscription %s -> %s: %v", userID, creatorID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to subscribe"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "subscription": subscription})
}

func CancelSubscription(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	subscriptionID, err := uuid.Parse(c.Params("subscriptionId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Subscription not found"})
	}

	var subscription models.Subscription
	if err := database.DB.
		Where("id = ? AND subscriber_id = ?", subscriptionID, userID).
		First(&subscription).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Subscription not found"})
	}

	if subscription.Status != models.SubscriptionActive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Subscription is not active"})
	}

	subscription.Status = models.SubscriptionCancelled
	if err := database.DB.Save(&subscription).Error; err != nil {
		log.Printf("Failed to cancel subscription %s: %v", subscription.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to cancel subscription"})
	}

	return c.JSON(fiber.Map{"success": true, "subscription": subscription})
}

func GetMySubscriptions(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var subscriptions []models.Subscription
	if err := database.DB.
		Where("subscriber_id = ?", userID).
		Order("created_at desc").
		Find(&subscriptions).Error; err != nil {
		log.Printf("Failed to list subscriptions for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch subscriptions"})
	}

	return c.JSON(fiber.Map{"success": true, "subscriptions": subscriptions})
}
