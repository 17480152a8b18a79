package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strconv"

	"recommender/internal/logger"

	"github.com/gin-gonic/gin"
)

// CredentialReader exposes the stored shop credentials to the sync guard.
type CredentialReader interface {
	Credentials() (shopID, apiKey string, err error)
}

// SyncHash computes the hash expected in the sync endpoints' h parameter.
func SyncHash(shopID, apiKey string) string {
	sum := sha256.Sum256([]byte(shopID + apiKey))
	return hex.EncodeToString(sum[:])
}

// SyncAuth guards the externally-triggered sync endpoints. The caller must
// pass h, the hex SHA-256 of shop_id+api_key, and t, a numeric timestamp.
// The hash comparison is constant time. Any failure answers 418.
func SyncAuth(creds CredentialReader, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		hash := c.Query("h")
		ts := c.Query("t")

		if _, err := strconv.ParseInt(ts, 10, 64); err != nil {
			logger.Warn("Sync request rejected: bad timestamp %q", ts)
			c.AbortWithStatusJSON(http.StatusTeapot, gin.H{"error": "invalid timestamp"})
			return
		}

		shopID, apiKey, err := creds.Credentials()
		if err != nil || shopID == "" || apiKey == "" {
			logger.Warn("Sync request rejected: credentials unavailable")
			c.AbortWithStatusJSON(http.StatusTeapot, gin.H{"error": "credentials not configured"})
			return
		}

		expected := SyncHash(shopID, apiKey)
		if subtle.ConstantTimeCompare([]byte(hash), []byte(expected)) != 1 {
			logger.Warn("Sync request rejected: hash mismatch")
			c.AbortWithStatusJSON(http.StatusTeapot, gin.H{"error": "invalid hash"})
			return
		}

		c.Next()
	}
}
