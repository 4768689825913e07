package jobs

import (
	"log"
	"time"

	"github.com/jkemboi52/streamshare/database"
	"github.com/jkemboi52/streamshare/models"
)

const presenceTimeout = 5 * time.Minute

// SweepStalePresence marks users offline when nothing has refreshed their
// last_seen_at within the timeout. Websocket disconnects normally handle
// this; the sweep catches crashed clients.
func SweepStalePresence() {
	cutoff := time.Now().Add(-presenceTimeout)

	result := database.DB.Model(&models.User{}).
		Where("is_online = ? AND (last_seen_at IS NULL OR last_seen_at < ?)", true, cutoff).
		Update("is_online", false)
	if result.Error != nil {
		log.Printf("🔥 Presence sweep failed: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("Presence sweep marked %d user(s) offline", result.RowsAffected)
	}
}
