package utils

import (
	"math/rand"
	"time"

	"github.com/jkemboi52/streamshare/models"
	"gorm.io/gorm"
)

const shareCodeLength = 8
const letterBytes = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateUniqueShareCode returns a short code not yet used by any video,
// for shareable watch links.
func GenerateUniqueShareCode(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, shareCodeLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		code := string(b)

		var video models.Video
		err := tx.Where("share_code = ?", code).First(&video).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return code, nil
			}
			return "", err
		}
	}
}
