package handlers

import (
	"log"
	"time"

	"github.com/jkemboi52/streamshare/database"
	"github.com/jkemboi52/streamshare/models"
	"github.com/jkemboi52/streamshare/notifications"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PayoutDecisionRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

func GetPendingPayouts(c *fiber.Ctx) error {
	var payouts []models.PayoutRequest
	if err := database.DB.
		Where("status = ?", models.PayoutPending).
		Preload("Creator").
		Order("created_at asc").
		Find(&payouts).Error; err != nil {
		log.Printf("Failed to list pending payouts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch payouts"})
	}

	return c.JSON(fiber.Map{"success": true, "payouts": payouts})
}

func DecidePayout(c *fiber.Ctx) error {
	payoutID, err := uuid.Parse(c.Params("payoutId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Payout not found"})
	}

	var req PayoutDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	var payout models.PayoutRequest
	if err := database.DB.Preload("Creator").First(&payout, "id = ?", payoutID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Payout not found"})
	}
	if payout.Status != models.PayoutPending {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Payout already processed"})
	}

	now := time.Now()
	if req.Action == "approve" {
		payout.Status = models.PayoutApproved
	} else {
		payout.Status = models.PayoutRejected
	}
	payout.ProcessedAt = &now

	if err := database.DB.Save(&payout).Error; err != nil {
		log.Printf("Failed to update payout %s: %v", payout.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update payout"})
	}

	go notifications.SendEmail(
		payout.Creator.DisplayName,
		payout.Creator.Email,
		"Your payout request was "+payout.Status,
		notifications.PayoutDecisionEmail(payout.Creator.DisplayName, payout.Status, payout.Amount),
	)

	return c.JSON(fiber.Map{"success": true, "payout": payout})
}

func GetAllUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := database.DB.Order("created_at desc").Find(&users).Error; err != nil {
		log.Printf("Failed to list users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch users"})
	}

	return c.JSON(fiber.Map{"success": true, "users": users})
}

// DeactivateUser soft-disables an account; nothing is deleted.
func DeactivateUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	result := database.DB.Model(&models.User{}).
		Where("id = ? AND role <> ?", userID, "admin").
		Update("is_active", false)
	if result.Error != nil {
		log.Printf("Failed to deactivate user %s: %v", userID, result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to deactivate user"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "User deactivated"})
}
