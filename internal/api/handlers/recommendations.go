package handlers

import (
	"net/http"

	"recommender/internal/logger"
	"recommender/internal/stacc"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type RecommendationHandler struct {
	fetcher  *stacc.Fetcher
	logger   *logger.Logger
	validate *validator.Validate
}

func NewRecommendationHandler(fetcher *stacc.Fetcher, logger *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		fetcher:  fetcher,
		logger:   logger,
		validate: validator.New(),
	}
}

type recommendationRequest struct {
	ItemID  string `json:"item_id" validate:"required"`
	StaccID string `json:"stacc_id"`
	BlockID string `json:"block_id" validate:"required"`
}

// Get returns the recommended item ids for a product slot. The list is
// empty when the remote API fails; the render path shows no box instead
// of an error.
func (h *RecommendationHandler) Get(c *gin.Context) {
	var req recommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := h.fetcher.Fetch(req.ItemID, req.StaccID, req.BlockID)
	c.JSON(http.StatusOK, gin.H{"items": items})
}
