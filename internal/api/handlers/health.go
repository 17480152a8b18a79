package handlers

import (
	"net/http"

	"recommender/internal/stacc"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	client  *stacc.Client
	version string
}

func NewHealthHandler(client *stacc.Client, version string) *HealthHandler {
	return &HealthHandler{
		client:  client,
		version: version,
	}
}

// Check reports service liveness plus the remote API connectivity.
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"version":    h.version,
		"api_online": h.client.HasConnection(),
	})
}
