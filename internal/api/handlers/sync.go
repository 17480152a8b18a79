package handlers

import (
	"net/http"

	"recommender/internal/logger"
	"recommender/internal/syncer"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	catalog *syncer.CatalogSyncer
	logs    *syncer.LogFlusher
	logger  *logger.Logger
}

func NewSyncHandler(catalog *syncer.CatalogSyncer, logs *syncer.LogFlusher, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{
		catalog: catalog,
		logs:    logs,
		logger:  logger,
	}
}

// Products runs a full catalog sync. Individual page failures are logged
// and skipped, so only a catalog read error fails the request.
func (h *SyncHandler) Products(c *gin.Context) {
	if err := h.catalog.Sync(); err != nil {
		h.logger.Error("Catalog sync failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog sync failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Logs flushes the log buffer to the remote API.
func (h *SyncHandler) Logs(c *gin.Context) {
	if err := h.logs.Flush(); err != nil {
		h.logger.Error("Log sync failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "log sync failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
