package jobs

import (
	"log"
	"time"

	"github.com/jkemboi52/streamshare/database"
	"github.com/jkemboi52/streamshare/models"
)

// ExpireLapsedSubscriptions flips active subscriptions whose paid period has
// ended. There is no auto-renewal; the payment flow is a simulation.
func ExpireLapsedSubscriptions() {
	result := database.DB.Model(&models.Subscription{}).
		Where("status = ? AND current_period_end < ?", models.SubscriptionActive, time.Now()).
		Update("status", models.SubscriptionExpired)
	if result.Error != nil {
		log.Printf("🔥 Subscription expiry job failed: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("Expired %d lapsed subscription(s)", result.RowsAffected)
	}
}
