package payments

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChargeResult is what a real gateway callback would eventually deliver.
type ChargeResult struct {
	Reference string
	Status    string
	ChargedAt time.Time
}

// SimulateCharge stands in for a payment gateway. It always succeeds and
// returns a synthetic reference; nothing leaves the process.
func SimulateCharge(userID uuid.UUID, amount float64, currency string) ChargeResult {
	ref := fmt.Sprintf("SIM-%s-%s",
		strings.ToUpper(currency),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:12])

	return ChargeResult{
		Reference: ref,
		Status:    "succeeded",
		ChargedAt: time.Now(),
	}
}

// TierPrice maps a subscription tier to its monthly price in USD.
func TierPrice(tier string) (float64, bool) {
	switch tier {
	case "basic":
		return 4.99, true
	case "plus":
		return 9.99, true
	case "premium":
		return 24.99, true
	}
	return 0, false
}
