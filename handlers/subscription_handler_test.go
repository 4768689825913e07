package handlers_test

import (
	"net/http"
	"testing"

	"github.com/jkemboi52/streamshare/database"
	"github.com/jkemboi52/streamshare/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeCreatesPaymentAtomically(t *testing.T) {
	app := setupTestApp(t)
	fan := createTestUser(t, "fan")
	creator := createTestUser(t, "creator")

	resp, payload := doRequest(t, app, "POST", "/api/v1/subscriptions", authToken(t, fan), fiber.Map{
		"creatorId": creator.ID.String(),
		"tier":      "plus",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	subscription := payload["subscription"].(map[string]interface{})
	assert.Equal(t, "active", subscription["status"])
	assert.Equal(t, "plus", subscription["tier"])

	var payment models.Payment
	require.NoError(t, database.DB.First(&payment, "subscription_id = ?", subscription["id"].(string)).Error)
	assert.Equal(t, "succeeded", payment.Status)
	assert.EqualValues(t, 9.99, payment.Amount)
	assert.Equal(t, fan.ID, payment.UserID)

	// Double-subscribe is rejected while the first one is active.
	resp, _ = doRequest(t, app, "POST", "/api/v1/subscriptions", authToken(t, fan), fiber.Map{
		"creatorId": creator.ID.String(),
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCancelSubscription(t *testing.T) {
	app := setupTestApp(t)
	fan := createTestUser(t, "fan")
	creator := createTestUser(t, "creator")

	resp, payload := doRequest(t, app, "POST", "/api/v1/subscriptions", authToken(t, fan), fiber.Map{
		"creatorId": creator.ID.String(),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	subscriptionID := payload["subscription"].(map[string]interface{})["id"].(string)

	resp, payload = doRequest(t, app, "DELETE", "/api/v1/subscriptions/"+subscriptionID, authToken(t, fan), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", payload["subscription"].(map[string]interface{})["status"])

	// Only the subscriber can touch it.
	resp, _ = doRequest(t, app, "DELETE", "/api/v1/subscriptions/"+subscriptionID, authToken(t, creator), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreatorEarningsReflectSubscriptionRevenue(t *testing.T) {
	app := setupTestApp(t)
	fan := createTestUser(t, "fan")
	otherFan := createTestUser(t, "otherfan")
	creator := createTestUser(t, "creator")

	for _, subscriber := range []*models.User{fan, otherFan} {
		resp, _ := doRequest(t, app, "POST", "/api/v1/subscriptions", authToken(t, subscriber), fiber.Map{
			"creatorId": creator.ID.String(),
			"tier":      "basic",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, payload := doRequest(t, app, "GET", "/api/v1/creator/earnings", authToken(t, creator), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 9.98, payload["gross_earnings"].(float64), 0.001)
	assert.EqualValues(t, 2, payload["subscriber_count"])

	// A payout beyond the balance is refused; one within it is recorded.
	resp, _ = doRequest(t, app, "POST", "/api/v1/creator/payouts", authToken(t, creator), fiber.Map{
		"amount": 50.0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, payload = doRequest(t, app, "POST", "/api/v1/creator/payouts", authToken(t, creator), fiber.Map{
		"amount": 5.0,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pending", payload["payout"].(map[string]interface{})["status"])

	resp, payload = doRequest(t, app, "GET", "/api/v1/creator/earnings", authToken(t, creator), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 4.98, payload["available_balance"].(float64), 0.001)
}
