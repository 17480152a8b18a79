package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"recommender/internal/logger"

	"github.com/gin-gonic/gin"
)

type staticCreds struct {
	shopID string
	apiKey string
}

func (s staticCreds) Credentials() (string, string, error) { return s.shopID, s.apiKey, nil }

func syncRouter(creds CredentialReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/sync/logs", SyncAuth(creds, logger.New("error")), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	return router
}

func TestSyncAuthAccepted(t *testing.T) {
	router := syncRouter(staticCreds{"shop", "key"})

	h := SyncHash("shop", "key")
	req := httptest.NewRequest(http.MethodGet, "/sync/logs?h="+h+"&t=1700000000", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestSyncAuthWrongHash(t *testing.T) {
	router := syncRouter(staticCreds{"shop", "key"})

	h := SyncHash("shop", "wrong")
	req := httptest.NewRequest(http.MethodGet, "/sync/logs?h="+h+"&t=1700000000", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", w.Code)
	}
}

func TestSyncAuthBadTimestamp(t *testing.T) {
	router := syncRouter(staticCreds{"shop", "key"})

	h := SyncHash("shop", "key")
	req := httptest.NewRequest(http.MethodGet, "/sync/logs?h="+h+"&t=notanumber", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", w.Code)
	}
}

func TestSyncAuthMissingCredentials(t *testing.T) {
	router := syncRouter(staticCreds{})

	req := httptest.NewRequest(http.MethodGet, "/sync/logs?h=deadbeef&t=1700000000", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", w.Code)
	}
}
