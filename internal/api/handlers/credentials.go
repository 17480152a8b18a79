package handlers

import (
	"net/http"
	"time"

	"recommender/internal/logger"
	"recommender/internal/stacc"
	"recommender/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type CredentialHandler struct {
	store          *store.Store
	client         *stacc.Client
	logger         *logger.Logger
	validate       *validator.Validate
	logSyncURL     string
	productSyncURL string
	syncTimeout    time.Duration
}

func NewCredentialHandler(st *store.Store, client *stacc.Client, logger *logger.Logger, logSyncURL, productSyncURL string, syncTimeout time.Duration) *CredentialHandler {
	return &CredentialHandler{
		store:          st,
		client:         client,
		logger:         logger,
		validate:       validator.New(),
		logSyncURL:     logSyncURL,
		productSyncURL: productSyncURL,
		syncTimeout:    syncTimeout,
	}
}

type credentialRequest struct {
	ShopID string `json:"shop_id" validate:"required"`
	APIKey string `json:"api_key" validate:"required"`
}

// Save is the first-time setup flow: store the credentials, probe the API,
// then register the sync callback URLs with a creds dispatch. A failed
// probe or dispatch leaves the circuit breaker engaged.
func (h *CredentialHandler) Save(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SaveCredentials(req.ShopID, req.APIKey); err != nil {
		h.logger.Error("Failed to save credentials: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save credentials"})
		return
	}

	if !h.client.HasConnection() {
		if err := h.store.SetAuthFailed(true); err != nil {
			h.logger.Error("Failed to set auth flag: %v", err)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "API offline"})
		return
	}

	res := h.client.Send(stacc.OpCreds, map[string]interface{}{
		"log_sync_url":     h.logSyncURL,
		"product_sync_url": h.productSyncURL,
	}, h.syncTimeout)
	if !res.OK {
		// Send already set the auth flag and cleared the stored pair.
		c.JSON(http.StatusBadGateway, gin.H{"error": res.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "connected"})
}
