package handlers

import (
	"log"
	"time"

	"github.com/jkemboi52/streamshare/database"
	"github.com/jkemboi52/streamshare/models"
	"github.com/jkemboi52/streamshare/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type PayoutRequestBody struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type StatementRequest struct {
	Year  int `json:"year" validate:"required,min=2020,max=2100"`
	Month int `json:"month" validate:"required,min=1,max=12"`
}

// creatorBalance is gross succeeded subscription revenue minus everything
// already requested or paid out.
func creatorBalance(creatorID uuid.UUID) (gross, pending, available float64, err error) {
	err = database.DB.Model(&models.Payment{}).
		Joins("JOIN subscriptions ON subscriptions.id = payments.subscription_id").
		Where("subscriptions.creator_id = ? AND payments.status = ?", creatorID, "succeeded").
		Select("COALESCE(SUM(payments.amount), 0)").
		Scan(&gross).Error
	if err != nil {
		return
	}

	err = database.DB.Model(&models.PayoutRequest{}).
		Where("creator_id = ? AND status IN ?", creatorID, []string{models.PayoutPending, models.PayoutApproved, models.PayoutPaid}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&pending).Error
	if err != nil {
		return
	}

	available = gross - pending
	return
}

func GetEarnings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	gross, pending, available, err := creatorBalance(userID)
	if err != nil {
		log.Printf("Failed to compute earnings for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch earnings"})
	}

	var subscriberCount int64
	database.DB.Model(&models.Subscription{}).
		Where("creator_id = ? AND status = ?", userID, models.SubscriptionActive).
		Count(&subscriberCount)

	return c.JSON(fiber.Map{
		"success":           true,
		"gross_earnings":    gross,
		"pending_payouts":   pending,
		"available_balance": available,
		"subscriber_count":  subscriberCount,
	})
}

func RequestPayout(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req PayoutRequestBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	_, _, available, err := creatorBalance(userID)
	if err != nil {
		log.Printf("Failed to compute balance for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to request payout"})
	}
	if req.Amount > available {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Requested amount exceeds available balance"})
	}

	payout := models.PayoutRequest{
		CreatorID: userID,
		Amount:    req.Amount,
		Status:    models.PayoutPending,
	}
	if err := database.DB.Create(&payout).Error; err != nil {
		log.Printf("Failed to create payout request for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to request payout"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "payout": payout})
}

func GetMyPayouts(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var payouts []models.PayoutRequest
	if err := database.DB.
		Where("creator_id = ?", userID).
		Order("created_at desc").
		Find(&payouts).Error; err != nil {
		log.Printf("Failed to list payouts for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch payouts"})
	}

	return c.JSON(fiber.Map{"success": true, "payouts": payouts})
}

// GenerateStatement builds the monthly earnings statement PDF on demand.
// Generation is idempotent per creator and month.
func GenerateStatement(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req StatementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	statement, err := services.GenerateEarningsStatement(userID, req.Year, time.Month(req.Month))
	if err != nil {
		log.Printf("Failed to generate statement for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to generate statement"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "statement": statement})
}

func GetMyStatements(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var statements []models.EarningsStatement
	if err := database.DB.
		Where("creator_id = ?", userID).
		Order("period_start desc").
		Find(&statements).Error; err != nil {
		log.Printf("Failed to list statements for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch statements"})
	}

	return c.JSON(fiber.Map{"success": true, "statements": statements})
}
